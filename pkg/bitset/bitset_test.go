package bitset

import (
	"testing"
)

// TestConstructorWidths verifies that each calendar constructor sizes
// the set for its unit.
func TestConstructorWidths(t *testing.T) {
	tests := []struct {
		name  string
		set   Set
		width uint
		full  uint64
	}{
		{"minutes", Minutes(), MinuteBits, AllMinutes},
		{"hours", Hours(), HourBits, AllHours},
		{"days of month", DaysOfMonth(), DayOfMonthBits, AllDayOfMonth},
		{"months", Months(), MonthBits, AllMonth},
		{"days of week", DaysOfWeek(), DayOfWeekBits, AllDayOfWeek},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set.Width() != tt.width {
				t.Fatalf("Width() = %d, want %d", tt.set.Width(), tt.width)
			}
			if !tt.set.Empty() {
				t.Fatal("constructor should return an empty set")
			}
			s := tt.set
			s.Fill()
			if s.Word() != tt.full {
				t.Fatalf("Fill() word = %#x, want %#x", s.Word(), tt.full)
			}
			if !s.Full() {
				t.Fatal("Full() should be true after Fill()")
			}
		})
	}
}

func TestAddRemoveTest(t *testing.T) {
	s := Hours()
	s.Add(0)
	s.Add(23)
	s.Add(24) // out of width, ignored
	s.Add(63) // out of width, ignored

	if !s.Test(0) || !s.Test(23) {
		t.Fatal("bits 0 and 23 should be set")
	}
	if s.Test(24) || s.Test(63) {
		t.Fatal("out-of-width bits must never be set")
	}
	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}

	s.Remove(23)
	if s.Test(23) {
		t.Fatal("bit 23 should be cleared")
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
}

func TestFromWordMasks(t *testing.T) {
	// A raw word with garbage above the month width must come back
	// clean.
	s := FromWord(^uint64(0), MonthBits)
	if s.Word() != AllMonth {
		t.Fatalf("Word() = %#x, want %#x", s.Word(), AllMonth)
	}
	if !s.Full() {
		t.Fatal("masked all-ones word should be full")
	}
}

func TestNextFrom(t *testing.T) {
	s := Minutes()
	s.Add(5)
	s.Add(17)
	s.Add(59)

	tests := []struct {
		from uint
		want uint
		ok   bool
	}{
		{0, 5, true},
		{5, 5, true},
		{6, 17, true},
		{18, 59, true},
		{59, 59, true},
		{60, 0, false},
	}

	for _, tt := range tests {
		got, ok := s.NextFrom(tt.from)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NextFrom(%d) = (%d, %v), want (%d, %v)",
				tt.from, got, ok, tt.want, tt.ok)
		}
	}

	var empty = Minutes()
	if _, ok := empty.NextFrom(0); ok {
		t.Fatal("NextFrom on empty set should report no bit")
	}
}

func TestEachAscending(t *testing.T) {
	s := DaysOfWeek()
	s.Add(6)
	s.Add(0)
	s.Add(3)

	var got []uint
	s.Each(func(i uint) { got = append(got, i) })

	want := []uint{0, 3, 6}
	if len(got) != len(want) {
		t.Fatalf("Each visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Each visited %v, want %v", got, want)
		}
	}
}

func TestUnion(t *testing.T) {
	a := Months()
	a.Add(0)
	b := Months()
	b.Add(11)

	u := a.Union(b)
	if !u.Test(0) || !u.Test(11) || u.Count() != 2 {
		t.Fatalf("Union word = %#x", u.Word())
	}
	if u.Width() != MonthBits {
		t.Fatalf("Union width = %d, want %d", u.Width(), MonthBits)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	s := DaysOfMonth()
	s.Add(0)  // day 1
	s.Add(30) // day 31

	buf := s.AppendBytes(nil)
	if len(buf) != 8 {
		t.Fatalf("AppendBytes produced %d bytes, want 8", len(buf))
	}

	back := SetFromBytes(buf, DayOfMonthBits)
	if !back.Equal(s) {
		t.Fatalf("round trip word = %#x, want %#x", back.Word(), s.Word())
	}
}
