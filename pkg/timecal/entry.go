// Package timecal implements the crontab-like time-expression model of
// the retrieve daemon: parsing and validation of five-field calendar
// expressions, membership testing against a wall-clock instant, and
// forward scheduling of the next matching instant, optionally in a
// named timezone.
//
// Expressions are held as compact bit sets (see pkg/bitset) so that a
// parsed entry serializes directly into a retrieve-area record.
package timecal

import (
	"time"

	"github.com/fetchd-io/fetchd/pkg/bitset"
)

// MaxEntries is the number of time-entry slots a record carries.
const MaxEntries = 12

// TimeExternal is the sentinel stored in a record's month word for an
// entry that never fires on its own and is only triggered externally.
const TimeExternal uint64 = 1 << 31

// Never is the instant returned by Next for externally triggered
// entries. It is the largest time the daemon treats as representable.
var Never = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Entry is one parsed five-field calendar expression.
//
// Minute and ContinuousMinute are distinct sets: ContinuousMinute is
// only populated by a bare "*" (or "*/1") minute field and expresses
// "every minute, continuously", which downstream consumers may treat
// differently from an enumerated full minute set. Evaluation tests the
// union of the two.
type Entry struct {
	Minute           bitset.Set
	ContinuousMinute bitset.Set
	Hour             bitset.Set
	DayOfMonth       bitset.Set
	Month            bitset.Set
	DayOfWeek        bitset.Set

	// External marks an entry whose month word carries TimeExternal.
	// Such an entry is never auto-scheduled.
	External bool
}

// NewEntry returns an entry with empty sets of the proper widths.
func NewEntry() Entry {
	return Entry{
		Minute:           bitset.Minutes(),
		ContinuousMinute: bitset.Minutes(),
		Hour:             bitset.Hours(),
		DayOfMonth:       bitset.DaysOfMonth(),
		Month:            bitset.Months(),
		DayOfWeek:        bitset.DaysOfWeek(),
	}
}

// MonthWord returns the month field as stored on disk: the sentinel for
// external entries, the raw bit word otherwise.
func (e *Entry) MonthWord() uint64 {
	if e.External {
		return TimeExternal
	}
	return e.Month.Word()
}

// SetMonthWord rebuilds the month field from its on-disk word.
func (e *Entry) SetMonthWord(w uint64) {
	if w == TimeExternal {
		e.External = true
		e.Month = bitset.Months()
		return
	}
	e.External = false
	e.Month = bitset.FromWord(w, bitset.MonthBits)
}

// IsZero reports whether the entry carries no constraint at all. A
// zero entry occupies an unused record slot.
func (e *Entry) IsZero() bool {
	return !e.External &&
		e.Minute.Empty() && e.ContinuousMinute.Empty() &&
		e.Hour.Empty() && e.DayOfMonth.Empty() &&
		e.Month.Empty() && e.DayOfWeek.Empty()
}
