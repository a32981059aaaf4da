package timecal

import (
	"strings"

	"github.com/fetchd-io/fetchd/pkg/bitset"
)

// fieldSpec describes one of the five expression fields. Values are
// inclusive; bit index is value minus min.
type fieldSpec struct {
	name string
	min  uint
	max  uint
}

var fieldSpecs = [5]fieldSpec{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day of month", 1, 31},
	{"month", 1, 12},
	{"day of week", 1, 7},
}

// Parse converts a five-field expression, or the literal "external",
// into an Entry. On failure it returns a *ParseError and no entry; the
// caller decides whether to log, skip, or abort.
func Parse(s string) (*Entry, error) {
	entry := NewEntry()
	if err := parseInto(s, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Check runs the full parse without handing back an entry. It is the
// validation path used when only config syntax is being checked.
func Check(s string) error {
	entry := NewEntry()
	return parseInto(s, &entry)
}

func parseInto(s string, entry *Entry) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return &ParseError{Code: ErrTruncated}
	}

	if strings.HasPrefix(trimmed, "external") {
		if strings.TrimSpace(trimmed[len("external"):]) != "" {
			return &ParseError{Code: ErrCombine}
		}
		entry.External = true
		return nil
	}

	parts := strings.Fields(trimmed)
	if len(parts) < len(fieldSpecs) {
		return &ParseError{Code: ErrTruncated}
	}
	if len(parts) > len(fieldSpecs) {
		return &ParseError{Code: ErrCombine}
	}

	for i, part := range parts {
		if err := parseField(&fieldSpecs[i], part, i == 0, entry); err != nil {
			return err
		}
	}
	return nil
}

// parseField handles one comma-separated field. For the minute field a
// bare "*" (or "*/1") selects the continuous-minute set unless an
// earlier term in the same field already chose the enumerated set; any
// enumerated term makes that choice sticky for the rest of the field.
func parseField(spec *fieldSpec, text string, isMinute bool, entry *Entry) error {
	target := fieldTarget(spec, entry)
	continuous := true

	for _, term := range strings.Split(text, ",") {
		if term == "" {
			return &ParseError{Code: ErrTruncated, Field: spec.name}
		}

		if term[0] == '*' {
			step := uint(1)
			rest := term[1:]
			if rest != "" {
				if rest[0] != '/' {
					return &ParseError{Code: ErrNonNumeric, Field: spec.name, Char: rest[0]}
				}
				var err error
				step, rest, err = parseNumber(spec, rest[1:])
				if err != nil {
					return err
				}
				if rest != "" {
					return &ParseError{Code: ErrNonNumeric, Field: spec.name, Char: rest[0]}
				}
			}
			if step == 0 || step > spec.max {
				return &ParseError{Code: ErrInvalidStep, Field: spec.name, Step: step}
			}
			if isMinute && step == 1 && continuous {
				entry.ContinuousMinute.Fill()
				continue
			}
			if step == 1 {
				target.Fill()
			} else {
				for v := spec.min; v <= spec.max; v += step {
					target.Add(v - spec.min)
				}
			}
			continuous = false
			continue
		}

		lo, rest, err := parseNumber(spec, term)
		if err != nil {
			return err
		}
		if lo < spec.min || lo > spec.max {
			return &ParseError{Code: ErrOutOfRange, Field: spec.name}
		}

		hi := lo
		step := uint(1)
		if rest != "" {
			if rest[0] != '-' {
				return &ParseError{Code: ErrNonNumeric, Field: spec.name, Char: rest[0]}
			}
			hi, rest, err = parseNumber(spec, rest[1:])
			if err != nil {
				return err
			}
			if hi < spec.min || hi > spec.max {
				return &ParseError{Code: ErrOutOfRange, Field: spec.name}
			}
			if hi < lo {
				return &ParseError{Code: ErrBadRange, Field: spec.name}
			}
			if rest != "" {
				if rest[0] != '/' {
					return &ParseError{Code: ErrNonNumeric, Field: spec.name, Char: rest[0]}
				}
				step, rest, err = parseNumber(spec, rest[1:])
				if err != nil {
					return err
				}
				if rest != "" {
					return &ParseError{Code: ErrNonNumeric, Field: spec.name, Char: rest[0]}
				}
				if step == 0 || step > spec.max {
					return &ParseError{Code: ErrInvalidStep, Field: spec.name, Step: step}
				}
			}
		}

		for v := lo; v <= hi; v += step {
			target.Add(v - spec.min)
		}
		continuous = false
	}
	return nil
}

// parseNumber consumes leading digits from s and returns the value and
// the unconsumed remainder.
func parseNumber(spec *fieldSpec, s string) (uint, string, error) {
	if s == "" {
		return 0, "", &ParseError{Code: ErrTruncated, Field: spec.name}
	}
	if s[0] < '0' || s[0] > '9' {
		return 0, "", &ParseError{Code: ErrNonNumeric, Field: spec.name, Char: s[0]}
	}
	var v uint
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		v = v*10 + uint(s[i]-'0')
		if v > 10000 {
			return 0, "", &ParseError{Code: ErrOutOfRange, Field: spec.name}
		}
		i++
	}
	return v, s[i:], nil
}

func fieldTarget(spec *fieldSpec, entry *Entry) *bitset.Set {
	switch spec.name {
	case "minute":
		return &entry.Minute
	case "hour":
		return &entry.Hour
	case "day of month":
		return &entry.DayOfMonth
	case "month":
		return &entry.Month
	default:
		return &entry.DayOfWeek
	}
}
