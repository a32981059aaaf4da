package timecal

import "time"

// maxScanYears bounds the forward scan. A constraint that cannot be
// satisfied within this many simulated years is reported as
// ErrUnreachable instead of looping forever.
const maxScanYears = 2000

// Contains reports whether t satisfies at least one of the entries.
//
// An entry matches when the month, day-of-month, day-of-week and hour
// bits of t all test positive and the minute bit tests positive in
// either the enumerated or the continuous minute set. External entries
// never match.
func Contains(t time.Time, entries []Entry) bool {
	for i := range entries {
		if entryContains(&entries[i], t) {
			return true
		}
	}
	return false
}

func entryContains(e *Entry, t time.Time) bool {
	if e.External {
		return false
	}
	if !e.Month.Test(uint(t.Month()) - 1) {
		return false
	}
	if !e.DayOfMonth.Test(uint(t.Day()) - 1) {
		return false
	}
	if !e.DayOfWeek.Test(modelWeekday(t.Weekday())) {
		return false
	}
	if !e.Hour.Test(uint(t.Hour())) {
		return false
	}
	m := uint(t.Minute())
	return e.Minute.Test(m) || e.ContinuousMinute.Test(m)
}

// modelWeekday converts Go's Sunday-based weekday to the model's
// Monday=0 .. Sunday=6 bit index.
func modelWeekday(wd time.Weekday) uint {
	return uint((int(wd) + 6) % 7)
}

// Next computes the smallest whole-minute instant strictly after t that
// satisfies the entry, evaluated in the named timezone (local time when
// tz is empty). External entries yield Never.
//
// The scan walks broken-down components month-first; whenever a higher
// component advances, the lower components reset and the fixups rerun.
// Known quirk: a day-of-month beyond the length of every selected month
// (such as day 31 in February) is not rejected but normalizes into the
// first days of the following month.
func Next(t time.Time, e *Entry, tz string) (time.Time, error) {
	if e.External {
		return Never, nil
	}

	minute := e.Minute.Union(e.ContinuousMinute)
	if minute.Empty() || e.Hour.Empty() || e.DayOfMonth.Empty() ||
		e.Month.Empty() || e.DayOfWeek.Empty() {
		return time.Time{}, ErrUnreachable
	}

	loc := Location(tz)
	t = t.In(loc).Add(time.Minute)

	year, mon, day := t.Date()
	hour, min := t.Hour(), t.Minute()
	m := uint(mon)

	bothDays := !e.DayOfMonth.Full() && !e.DayOfWeek.Full()
	startYear := year

scan:
	for {
		if year-startYear > maxScanYears {
			return time.Time{}, ErrUnreachable
		}

		// Month fixup.
		if !e.Month.Test(m - 1) {
			next, ok := e.Month.NextFrom(m - 1)
			if !ok {
				year++
				next, _ = e.Month.NextFrom(0)
			}
			m = next + 1
			day, hour, min = 1, 0, 0
		}

		// Day fixup.
		if bothDays {
			// Both constraints set: walk the month day by day
			// looking for a day satisfying each.
			found := false
			for d := day; d <= greatestDayOfMonth(m, year); d++ {
				if e.DayOfMonth.Test(uint(d)-1) &&
					e.DayOfWeek.Test(weekdayOf(year, m, d, loc)) {
					if d != day {
						hour, min = 0, 0
					}
					day = d
					found = true
					break
				}
			}
			if !found {
				m++
				day, hour, min = 1, 0, 0
				if m > 12 {
					m = 1
					year++
				}
				continue scan
			}
		} else if !e.DayOfWeek.Full() {
			wd := weekdayOf(year, m, day, loc)
			if !e.DayOfWeek.Test(wd) {
				next, ok := e.DayOfWeek.NextFrom(wd)
				var delta int
				if ok {
					delta = int(next - wd)
				} else {
					next, _ = e.DayOfWeek.NextFrom(0)
					delta = int(7 - wd + next)
				}
				day += delta
				hour, min = 0, 0
				if last := greatestDayOfMonth(m, year); day > last {
					day -= last
					m++
					if m > 12 {
						m = 1
						year++
					}
					continue scan
				}
			}
		} else if !e.DayOfMonth.Full() {
			if !e.DayOfMonth.Test(uint(day) - 1) {
				next, ok := e.DayOfMonth.NextFrom(uint(day) - 1)
				if !ok {
					m++
					day, hour, min = 1, 0, 0
					if m > 12 {
						m = 1
						year++
					}
					continue scan
				}
				// No clamp against the month length here; an
				// overlong day normalizes into the next month.
				day = int(next) + 1
				hour, min = 0, 0
			}
		}

		// Hour fixup.
		if !e.Hour.Test(uint(hour)) {
			next, ok := e.Hour.NextFrom(uint(hour))
			if !ok {
				day++
				hour, min = 0, 0
				if day > greatestDayOfMonth(m, year) {
					day = 1
					m++
					if m > 12 {
						m = 1
						year++
					}
				}
				continue scan
			}
			hour = int(next)
			min = 0
		}

		// Minute fixup.
		if !minute.Test(uint(min)) {
			next, ok := minute.NextFrom(uint(min))
			if !ok {
				hour++
				min = 0
				if hour > 23 {
					hour = 0
					day++
					if day > greatestDayOfMonth(m, year) {
						day = 1
						m++
						if m > 12 {
							m = 1
							year++
						}
					}
				}
				continue scan
			}
			min = int(next)
		}

		break
	}

	return time.Date(year, time.Month(m), day, hour, min, 0, 0, loc), nil
}

// NextArray returns the earliest Next over all entries, never before
// now. Entries that cannot be satisfied are skipped; when no entry can
// fire at all the result is Never.
func NextArray(now time.Time, entries []Entry, tz string) time.Time {
	best := Never
	for i := range entries {
		if entries[i].IsZero() {
			continue
		}
		next, err := Next(now, &entries[i], tz)
		if err != nil {
			continue
		}
		if next.Before(best) {
			best = next
		}
	}
	if best.Before(now) {
		return now
	}
	return best
}

// greatestDayOfMonth returns the number of days in the month,
// accounting for Gregorian leap years.
func greatestDayOfMonth(month uint, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}

func weekdayOf(year int, month uint, day int, loc *time.Location) uint {
	return modelWeekday(time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc).Weekday())
}
