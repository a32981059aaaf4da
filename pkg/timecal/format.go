package timecal

import (
	"strconv"
	"strings"

	"github.com/fetchd-io/fetchd/pkg/bitset"
)

// Format renders an entry back into expression text. Full sets collapse
// to "*" and external entries render as "external"; the output is
// canonical in the sense that parsing it again yields an entry that
// formats identically.
func Format(e *Entry) string {
	if e.External {
		return "external"
	}

	var b strings.Builder
	b.WriteString(formatMinute(e))
	b.WriteByte(' ')
	b.WriteString(formatSet(e.Hour, 0))
	b.WriteByte(' ')
	b.WriteString(formatSet(e.DayOfMonth, 1))
	b.WriteByte(' ')
	b.WriteString(formatSet(e.Month, 1))
	b.WriteByte(' ')
	b.WriteString(formatSet(e.DayOfWeek, 1))
	return b.String()
}

func formatMinute(e *Entry) string {
	if e.ContinuousMinute.Full() || e.Minute.Full() {
		return "*"
	}
	return formatSet(e.Minute.Union(e.ContinuousMinute), 0)
}

// formatSet emits a comma list of the set's values, offset by the
// field's minimum. A full set collapses to "*".
func formatSet(s bitset.Set, min uint) string {
	if s.Full() {
		return "*"
	}
	var b strings.Builder
	first := true
	s.Each(func(i uint) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.FormatUint(uint64(i+min), 10))
	})
	return b.String()
}
