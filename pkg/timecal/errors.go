package timecal

import (
	"errors"
	"fmt"
)

// ErrUnreachable is returned by Next when no matching instant exists
// within the simulated-calendar bound.
var ErrUnreachable = errors.New("time expression is never satisfied")

// ParseErrorCode classifies time-expression parse failures. One code
// exists per failure mode, not per call site.
type ParseErrorCode int

const (
	// ErrBadRange means a range "n-m" with m < n.
	ErrBadRange ParseErrorCode = iota

	// ErrOutOfRange means a value outside the field's legal range.
	ErrOutOfRange

	// ErrNonNumeric means a non-digit where a number is required.
	ErrNonNumeric

	// ErrTruncated means the expression ended prematurely.
	ErrTruncated

	// ErrInvalidStep means a step of zero or beyond the field maximum.
	ErrInvalidStep

	// ErrCombine means "external" combined with further fields, or
	// trailing content after the five fields.
	ErrCombine
)

// ParseError describes a rejected time expression. Field names the
// offending field ("minute", "hour", ...), Char carries the offending
// byte for ErrNonNumeric and Step the offending step for
// ErrInvalidStep.
type ParseError struct {
	Code  ParseErrorCode
	Field string
	Char  byte
	Step  uint
}

func (e *ParseError) Error() string {
	switch e.Code {
	case ErrBadRange:
		return fmt.Sprintf("range end before range start in %s field", e.Field)
	case ErrOutOfRange:
		return fmt.Sprintf("value out of range in %s field", e.Field)
	case ErrNonNumeric:
		return fmt.Sprintf("non-numeric character %q in %s field", e.Char, e.Field)
	case ErrTruncated:
		return "time expression ends prematurely"
	case ErrInvalidStep:
		return fmt.Sprintf("invalid step size %d in %s field", e.Step, e.Field)
	case ErrCombine:
		return "cannot combine external with other time values"
	default:
		return "invalid time expression"
	}
}
