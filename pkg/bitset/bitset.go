// Package bitset provides the compact calendar bit sets used by the
// time-expression model and by the on-disk retrieve-area records.
//
// Each set maps bit i to a calendar unit: minute/second sets use bits
// 0..59 directly, the day-of-month set maps bit i to day i+1, the month
// set maps bit i to month i+1, and the day-of-week set maps bit 0 to
// Monday through bit 6 to Sunday.
//
// The backing word serializes as a fixed 8-byte field in host byte
// order, which is the exact representation the record files carry.
package bitset

import (
	"encoding/binary"
	"math/bits"
)

// Full-range words. These values are written verbatim into record files
// and must never change.
const (
	AllMinutes    uint64 = 1<<60 - 1
	AllHours      uint64 = 1<<24 - 1
	AllDayOfMonth uint64 = 1<<31 - 1
	AllMonth      uint64 = 1<<12 - 1
	AllDayOfWeek  uint64 = 1<<7 - 1
)

// Bit widths of the calendar sets.
const (
	MinuteBits     = 60
	HourBits       = 24
	DayOfMonthBits = 31
	MonthBits      = 12
	DayOfWeekBits  = 7
)

// Set is a width-bounded bit set over a single 64-bit word.
//
// The zero value is an empty set of width zero; use one of the
// constructors to obtain a set of the right calendar width.
type Set struct {
	bits  uint64
	width uint
}

func Minutes() Set     { return Set{width: MinuteBits} }
func Hours() Set       { return Set{width: HourBits} }
func DaysOfMonth() Set { return Set{width: DayOfMonthBits} }
func Months() Set      { return Set{width: MonthBits} }
func DaysOfWeek() Set  { return Set{width: DayOfWeekBits} }

// FromWord builds a set of the given width around a raw word, masking
// off bits beyond the width. Used when deserializing record fields.
func FromWord(word uint64, width uint) Set {
	return Set{bits: word & mask(width), width: width}
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}

// Word returns the raw backing word. This is the value stored in the
// record file.
func (s Set) Word() uint64 { return s.bits }

// Width returns the number of valid bits.
func (s Set) Width() uint { return s.width }

// Add sets bit i. Out-of-width indices are ignored.
func (s *Set) Add(i uint) {
	if i < s.width {
		s.bits |= 1 << i
	}
}

// Remove clears bit i.
func (s *Set) Remove(i uint) {
	if i < s.width {
		s.bits &^= 1 << i
	}
}

// Test reports whether bit i is set.
func (s Set) Test(i uint) bool {
	return i < s.width && s.bits&(1<<i) != 0
}

// Count returns the number of set bits.
func (s Set) Count() int { return bits.OnesCount64(s.bits) }

// Empty reports whether no bit is set.
func (s Set) Empty() bool { return s.bits == 0 }

// Equal reports whether both sets carry the same bits. Width is not
// compared; two record fields of the same kind always share a width.
func (s Set) Equal(o Set) bool { return s.bits == o.bits }

// Full reports whether every bit within the width is set.
func (s Set) Full() bool { return s.bits == mask(s.width) }

// Fill sets every bit within the width.
func (s *Set) Fill() { s.bits = mask(s.width) }

// Clear removes all bits.
func (s *Set) Clear() { s.bits = 0 }

// Union returns the bitwise union of two sets of the same width.
func (s Set) Union(o Set) Set {
	return Set{bits: s.bits | o.bits, width: s.width}
}

// NextFrom returns the lowest set bit with index >= from, or ok=false
// when no such bit exists. This is the primitive the forward scheduler
// is built on.
func (s Set) NextFrom(from uint) (uint, bool) {
	if from >= s.width {
		return 0, false
	}
	rest := s.bits >> from
	if rest == 0 {
		return 0, false
	}
	return from + uint(bits.TrailingZeros64(rest)), true
}

// Each calls fn for every set bit in ascending order.
func (s Set) Each(fn func(i uint)) {
	for i, ok := s.NextFrom(0); ok; i, ok = s.NextFrom(i + 1) {
		fn(i)
	}
}

// AppendBytes appends the 8-byte host-order serialization of the set.
func (s Set) AppendBytes(buf []byte) []byte {
	return binary.NativeEndian.AppendUint64(buf, s.bits)
}

// SetFromBytes rebuilds the word from its 8-byte host-order form.
func SetFromBytes(b []byte, width uint) Set {
	return FromWord(binary.NativeEndian.Uint64(b), width)
}
