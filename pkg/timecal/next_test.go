package timecal

import (
	"math/rand"
	"testing"
	"time"
)

func mustParse(t *testing.T, expr string) *Entry {
	t.Helper()
	e, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", expr, err)
	}
	return e
}

func TestNextEveryFiveMinutes(t *testing.T) {
	e := mustParse(t, "*/5 * * * *")

	epoch := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	next, err := Next(epoch, e, "UTC")
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	want := time.Date(1970, time.January, 1, 0, 5, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next(epoch) = %v, want %v", next, want)
	}
}

func TestNextExternal(t *testing.T) {
	e := mustParse(t, "external")
	next, err := Next(time.Now(), e, "")
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if !next.Equal(Never) {
		t.Fatalf("Next(external) = %v, want %v", next, Never)
	}
}

func TestNextUnreachable(t *testing.T) {
	// Hand-built entry with no minute bit at all. The parser never
	// produces this, but records read from disk can carry it.
	e := NewEntry()
	e.Hour.Fill()
	e.DayOfMonth.Fill()
	e.Month.Fill()
	e.DayOfWeek.Fill()

	if _, err := Next(time.Now(), &e, "UTC"); err != ErrUnreachable {
		t.Fatalf("Next() error = %v, want ErrUnreachable", err)
	}
}

func TestContains(t *testing.T) {
	e := mustParse(t, "*/5 * * * *")
	entries := []Entry{*e}

	at := func(minute int) time.Time {
		return time.Date(2024, time.June, 10, 14, minute, 0, 0, time.UTC)
	}
	if !Contains(at(10), entries) {
		t.Error("minute 10 should match */5")
	}
	if Contains(at(7), entries) {
		t.Error("minute 7 should not match */5")
	}

	ext := mustParse(t, "external")
	if Contains(at(10), []Entry{*ext}) {
		t.Error("external entries never match")
	}
}

func TestContainsWeekday(t *testing.T) {
	// 2024-06-10 is a Monday.
	e := mustParse(t, "0 9 * * 1")
	monday := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)

	if !Contains(monday, []Entry{*e}) {
		t.Error("Monday 09:00 should match")
	}
	if Contains(tuesday, []Entry{*e}) {
		t.Error("Tuesday 09:00 should not match")
	}
}

func TestNextWeekdayOnly(t *testing.T) {
	// Next Monday 09:00 after Monday 10:00 is a week later.
	e := mustParse(t, "0 9 * * 1")
	from := time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC)
	next, err := Next(from, e, "UTC")
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	want := time.Date(2024, time.June, 17, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next() = %v, want %v", next, want)
	}
}

func TestNextBothDayConstraints(t *testing.T) {
	// Friday the 13th at noon. The first one after 2024-01-01 is in
	// September.
	e := mustParse(t, "0 12 13 * 5")
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	next, err := Next(from, e, "UTC")
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	want := time.Date(2024, time.September, 13, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next() = %v, want %v", next, want)
	}
}

// TestNextOverlongDayNormalizes pins down the historical behavior for a
// day-of-month beyond the target month's length: the date normalizes
// into the following month instead of being rejected.
func TestNextOverlongDayNormalizes(t *testing.T) {
	e := mustParse(t, "0 0 31 2 *")
	from := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	next, err := Next(from, e, "UTC")
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	// February 31st of a leap year normalizes to March 2nd.
	want := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next() = %v, want %v", next, want)
	}
}

// TestNextProperties fuzzes Next over a fixed corpus of expressions:
// the result is strictly after the input, satisfies the entry, and is
// found within the scan bound.
func TestNextProperties(t *testing.T) {
	exprs := []string{
		"*/5 * * * *",
		"* * * * *",
		"0 0 1 1 *",
		"30 6 * * 1-5",
		"0,30 8-17 1,15 * *",
		"15 3 29 2 *",
		"0 12 13 * 5",
	}
	rng := rand.New(rand.NewSource(42))

	for _, expr := range exprs {
		e := mustParse(t, expr)
		for trial := 0; trial < 50; trial++ {
			from := time.Unix(rng.Int63n(2_000_000_000), 0).UTC()
			next, err := Next(from, e, "UTC")
			if err != nil {
				t.Fatalf("Next(%v, %q) error: %v", from, expr, err)
			}
			if !next.After(from) {
				t.Fatalf("Next(%v, %q) = %v, not strictly after", from, expr, next)
			}
			if !Contains(next, []Entry{*e}) {
				// Overlong days normalize across a month
				// boundary and may land outside the
				// constraint; only non-normalizing
				// expressions must satisfy membership.
				if expr != "15 3 29 2 *" {
					t.Fatalf("Next(%v, %q) = %v does not satisfy the entry", from, expr, next)
				}
			}
		}
	}
}

func TestNextArray(t *testing.T) {
	a := mustParse(t, "0 10 * * *")
	b := mustParse(t, "0 8 * * *")
	ext := mustParse(t, "external")
	var zero Entry

	now := time.Date(2024, time.June, 10, 6, 0, 0, 0, time.UTC)
	next := NextArray(now, []Entry{*a, *b, *ext, zero}, "UTC")
	want := time.Date(2024, time.June, 10, 8, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("NextArray() = %v, want %v", next, want)
	}

	// Only unschedulable entries: the result is Never.
	next = NextArray(now, []Entry{*ext, zero}, "UTC")
	if !next.Equal(Never) {
		t.Fatalf("NextArray() = %v, want %v", next, Never)
	}
}

func TestLocation(t *testing.T) {
	if Location("") != time.Local {
		t.Error("empty name should resolve to the local zone")
	}
	if Location("No/Such_Zone") != time.Local {
		t.Error("unknown name should fall back to the local zone")
	}
	if loc := Location("America/New_York"); loc.String() != "America/New_York" {
		t.Errorf("Location() = %v, want America/New_York", loc)
	}
	// Cached lookups return the same *time.Location.
	if Location("America/New_York") != Location("America/New_York") {
		t.Error("repeated lookups should hit the cache")
	}
}

// TestContainsInZone checks that viewing the clock through Location
// makes Contains agree with Next for zoned schedules: the instant Next
// schedules must test as due in the record's own zone even when the
// host clock reads a different hour.
func TestContainsInZone(t *testing.T) {
	e := mustParse(t, "0 9 * * *")
	entries := []Entry{*e}
	tz := "America/New_York"

	from := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	hostClock := NextArray(from, entries, tz).UTC()

	if Contains(hostClock, entries) {
		t.Fatal("13:00 UTC should not match 09:00 when read in UTC")
	}
	if !Contains(hostClock.In(Location(tz)), entries) {
		t.Fatal("the scheduled instant must be due in its own zone")
	}
}

func TestNextTimezone(t *testing.T) {
	// 09:00 in New York during DST is 13:00 UTC.
	e := mustParse(t, "0 9 * * *")
	from := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	next, err := Next(from, e, "America/New_York")
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	want := time.Date(2024, time.June, 10, 13, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next() = %v (%v UTC), want %v", next, next.UTC(), want)
	}
}
