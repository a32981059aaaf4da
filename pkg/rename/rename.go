// Package rename implements the declarative rename-rule language the
// retrieve daemon applies to files about to be dispatched: glob
// captures from a filter, positional extracts from the original name,
// time-field substitutions, hostname/counter/alternation tokens, and
// bounded output.
//
// The evaluator never fails a dispatch: malformed rule constructs are
// logged as warnings and skipped, capture overflows degrade to a no-op
// rename, and counter-file trouble substitutes a zero counter.
package rename

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fetchd-io/fetchd/internal/logger"
)

// Capture limits of the filter matcher.
const (
	MaxAsterix    = 20
	MaxQuestioner = 50
)

// Evaluator applies rename rules. Now and Hostname are injectable for
// deterministic evaluation; nil means the real clock and host.
type Evaluator struct {
	Store    *CounterStore
	Now      func() time.Time
	Hostname func() (string, error)
}

func (ev *Evaluator) now() time.Time {
	if ev.Now != nil {
		return ev.Now()
	}
	return time.Now()
}

func (ev *Evaluator) hostname() string {
	var name string
	var err error
	if ev.Hostname != nil {
		name, err = ev.Hostname()
	} else {
		name, err = os.Hostname()
	}
	if err != nil || name == "" {
		name = os.Getenv("HOSTNAME")
	}
	return name
}

// counter fetches the next per-rule counter, substituting 0 on I/O
// trouble as the counter contract prescribes.
func (ev *Evaluator) counter(jobID uint32) int32 {
	if ev.Store == nil {
		return 0
	}
	v, err := ev.Store.Next(jobID)
	if err != nil {
		logger.Warn("Rename counter unavailable, using 0: %v", err)
		return 0
	}
	return v
}

// Rename produces the new name for orig under the given filter and
// rule. The result is always NUL-safe within maxLength bytes (at most
// maxLength-1 characters). A filter that cannot capture what the rule
// references degrades to returning orig unchanged.
func (ev *Evaluator) Rename(orig, filter, rule string, maxLength int, jobID uint32) string {
	if maxLength <= 0 {
		return ""
	}

	if !strings.ContainsAny(filter, "*?") && strings.ContainsAny(rule, "*?") {
		logger.Warn("Rename rule %q references captures but filter %q has no wildcards", rule, filter)
		return clip(orig, maxLength-1)
	}

	captures, ok := matchFilter(orig, filter)
	if !ok {
		// Capture overflow or a filter that does not cover the
		// name: keep the original, the dispatch goes on.
		logger.Warn("Filter %q does not usably match %q, keeping original name", filter, orig)
		return clip(orig, maxLength-1)
	}

	e := emitter{
		ev:       ev,
		orig:     orig,
		captures: captures,
		jobID:    jobID,
		limit:    maxLength - 1,
	}
	e.run(rule)
	return e.out.String()
}

// captureSet holds the filter captures of phase one.
type captureSet struct {
	asterix  []string
	question []byte
}

// matchFilter walks filter and orig in lockstep, collecting one string
// capture per '*' and one character capture per '?'. '?' consumes
// exactly one character; '*' is lazy, scanning forward for the next
// literal run of the filter. ok is false when the captures overflow
// their fixed limits or the name runs out before the filter does.
func matchFilter(orig, filter string) (captureSet, bool) {
	var c captureSet
	i := 0
	j := 0

	for j < len(filter) {
		switch filter[j] {
		case '?':
			if i >= len(orig) {
				return c, false
			}
			if len(c.question) >= MaxQuestioner {
				return c, false
			}
			c.question = append(c.question, orig[i])
			i++
			j++

		case '*':
			if len(c.asterix) >= MaxAsterix {
				return c, false
			}
			j++
			// Literal run up to the next wildcard decides where
			// this capture ends.
			runEnd := j
			for runEnd < len(filter) && filter[runEnd] != '*' && filter[runEnd] != '?' {
				runEnd++
			}
			run := filter[j:runEnd]
			if run == "" {
				if j >= len(filter) {
					// Trailing star swallows the rest.
					c.asterix = append(c.asterix, orig[i:])
					i = len(orig)
					continue
				}
				// Star directly followed by another wildcard
				// captures nothing.
				c.asterix = append(c.asterix, "")
				continue
			}
			idx := strings.Index(orig[i:], run)
			if idx < 0 {
				return c, false
			}
			c.asterix = append(c.asterix, orig[i:i+idx])
			i += idx + len(run)
			j = runEnd

		default:
			if i >= len(orig) || orig[i] != filter[j] {
				return c, false
			}
			i++
			j++
		}
	}

	// Filter exhausted first: trailing original characters are simply
	// not captured.
	return c, true
}

func clip(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// emitter is the phase-two state: rule walker, output buffer with a
// hard cap, capture cursors and the stateful time modifier.
type emitter struct {
	ev       *Evaluator
	orig     string
	captures captureSet
	jobID    uint32

	out      strings.Builder
	limit    int
	overflow bool

	usedAsterix  int
	usedQuestion int

	timeModifier int64
	timeOp       byte
}

func (e *emitter) emit(s string) {
	room := e.limit - e.out.Len()
	if room <= 0 || len(s) > room {
		if !e.overflow {
			logger.Warn("Rename result for %q exceeds %d bytes, dropping overflow", e.orig, e.limit)
			e.overflow = true
		}
		if room > 0 {
			e.out.WriteString(s[:room])
		}
		return
	}
	e.out.WriteString(s)
}

func (e *emitter) emitByte(b byte) {
	e.emit(string(b))
}

func (e *emitter) run(rule string) {
	i := 0
	for i < len(rule) {
		switch rule[i] {
		case '*':
			e.nextAsterix()
			i++
		case '?':
			e.nextQuestion()
			i++
		case '\\':
			// Escape passthrough: the next character goes out
			// verbatim.
			i++
			if i < len(rule) {
				e.emitByte(rule[i])
				i++
			}
		case '%':
			i = e.token(rule, i+1)
		default:
			e.emitByte(rule[i])
			i++
		}
	}
}

func (e *emitter) nextAsterix() {
	if e.usedAsterix < len(e.captures.asterix) {
		e.emit(e.captures.asterix[e.usedAsterix])
		e.usedAsterix++
		return
	}
	// A single capture serves every star of the rule; anything else
	// is a rule asking for captures that never happened.
	if len(e.captures.asterix) == 1 {
		e.emit(e.captures.asterix[0])
		return
	}
	logger.Warn("Rename rule references more * captures than filter provided for %q", e.orig)
}

func (e *emitter) nextQuestion() {
	if e.usedQuestion < len(e.captures.question) {
		e.emitByte(e.captures.question[e.usedQuestion])
		e.usedQuestion++
		return
	}
	logger.Warn("Rename rule references more ? captures than filter provided for %q", e.orig)
}

// token handles one %-token starting at rule[i] (the byte after '%').
// It returns the index of the first unconsumed byte. Invalid subfields
// are logged and skipped without aborting the rename.
func (e *emitter) token(rule string, i int) int {
	if i >= len(rule) {
		logger.Warn("Rename rule ends in a bare %%")
		return i
	}

	switch rule[i] {
	case '%':
		e.emitByte('%')
		return i + 1

	case '*':
		n, next, ok := parseNumber(rule, i+1)
		if !ok || n < 1 || n > len(e.captures.asterix) {
			logger.Warn("Rename rule %%*%d has no matching capture", n)
			return next
		}
		e.emit(e.captures.asterix[n-1])
		return next

	case '?':
		n, next, ok := parseNumber(rule, i+1)
		if !ok || n < 1 || n > len(e.captures.question) {
			logger.Warn("Rename rule %%?%d has no matching capture", n)
			return next
		}
		e.emitByte(e.captures.question[n-1])
		return next

	case 'o':
		n, next, ok := parseNumber(rule, i+1)
		if !ok || n < 1 || n > len(e.orig) {
			logger.Warn("Rename rule %%o%d is outside the original name", n)
			return next
		}
		e.emitByte(e.orig[n-1])
		return next

	case 'O':
		return e.substring(rule, i+1)

	case 'n':
		e.emit(fmt.Sprintf("%04x", uint32(e.ev.counter(e.jobID))&0xffff))
		return i + 1

	case 'h':
		e.emit(e.ev.hostname())
		return i + 1

	case 'H':
		host := e.ev.hostname()
		if dot := strings.IndexByte(host, '.'); dot >= 0 {
			host = host[:dot]
		}
		e.emit(host)
		return i + 1

	case 't':
		return e.timeToken(rule, i+1)

	case 'T':
		return e.timeModifierToken(rule, i+1)

	case 'a':
		return e.alternation(rule, i+1)

	default:
		logger.Warn("Unknown rename token %%%c, skipping", rule[i])
		return i + 1
	}
}

// substring handles %On-m, %O^-m, %On-$ and %O^-$: an inclusive,
// 1-based slice of the original name.
func (e *emitter) substring(rule string, i int) int {
	start := 1
	if i < len(rule) && rule[i] == '^' {
		i++
	} else {
		n, next, ok := parseNumber(rule, i)
		if !ok {
			logger.Warn("Rename rule %%O needs a start position")
			return next
		}
		start = n
		i = next
	}

	if i >= len(rule) || rule[i] != '-' {
		logger.Warn("Rename rule %%O is missing the range separator")
		return i
	}
	i++

	end := len(e.orig)
	if i < len(rule) && rule[i] == '$' {
		i++
	} else {
		n, next, ok := parseNumber(rule, i)
		if !ok {
			logger.Warn("Rename rule %%O needs a range end")
			return next
		}
		end = n
		i = next
	}

	if start < 1 || end < start {
		logger.Warn("Rename rule %%O range %d-%d is not ascending", start, end)
		return i
	}
	if start > len(e.orig) {
		return i
	}
	if end > len(e.orig) {
		end = len(e.orig)
	}
	e.emit(e.orig[start-1 : end])
	return i
}

// timeToken expands one %t<x> field of the (possibly modified) clock.
func (e *emitter) timeToken(rule string, i int) int {
	if i >= len(rule) {
		logger.Warn("Rename rule ends inside %%t")
		return i
	}

	t := e.modifiedTime()
	var s string
	switch rule[i] {
	case 'a':
		s = t.Format("Mon")
	case 'A':
		s = t.Format("Monday")
	case 'b':
		s = t.Format("Jan")
	case 'B':
		s = t.Format("January")
	case 'd':
		s = t.Format("02")
	case 'i':
		s = strconv.Itoa(t.Day())
	case 'j':
		s = fmt.Sprintf("%03d", t.YearDay())
	case 'm':
		s = t.Format("01")
	case 'J':
		s = strconv.Itoa(int(t.Month()))
	case 'R':
		s = t.Format("15:04")
	case 'w':
		s = strconv.Itoa(int(t.Weekday()))
	case 'W':
		mondayBased := (int(t.Weekday()) + 6) % 7
		s = fmt.Sprintf("%02d", (t.YearDay()+6-mondayBased)/7)
	case 'y':
		s = t.Format("06")
	case 'Y':
		s = t.Format("2006")
	case 'H':
		s = t.Format("15")
	case 'o':
		s = strconv.Itoa(t.Hour())
	case 'M':
		s = t.Format("04")
	case 'S':
		s = t.Format("05")
	case 'U':
		s = strconv.FormatInt(t.Unix(), 10)
	default:
		logger.Warn("Unknown time field %%t%c, skipping", rule[i])
		return i + 1
	}
	e.emit(s)
	return i + 1
}

// modifiedTime applies the %T modifier, if any, to the current clock.
func (e *emitter) modifiedTime() time.Time {
	t := e.ev.now()
	if e.timeModifier == 0 && e.timeOp == 0 {
		return t
	}
	sec := t.Unix()
	switch e.timeOp {
	case '-':
		sec -= e.timeModifier
	case '*':
		sec *= e.timeModifier
	case '/':
		if e.timeModifier != 0 {
			sec /= e.timeModifier
		}
	case '%':
		if e.timeModifier != 0 {
			sec %= e.timeModifier
		}
	default:
		sec += e.timeModifier
	}
	return time.Unix(sec, 0).In(t.Location())
}

// timeModifierToken parses %T<sign><number><unit> and stores the
// modifier for subsequent %t fields.
func (e *emitter) timeModifierToken(rule string, i int) int {
	op := byte('+')
	if i < len(rule) {
		switch rule[i] {
		case '+', '-', '*', '/', '%':
			op = rule[i]
			i++
		}
	}

	n, next, ok := parseNumber(rule, i)
	if !ok {
		logger.Warn("Rename rule %%T needs a number")
		return next
	}
	i = next

	unit := int64(1)
	if i < len(rule) {
		switch rule[i] {
		case 'S':
			unit = 1
			i++
		case 'M':
			unit = 60
			i++
		case 'H':
			unit = 3600
			i++
		case 'd':
			unit = 86400
			i++
		}
	}

	e.timeOp = op
	e.timeModifier = int64(n) * unit
	return i
}

// alternation handles %ab, %ad<digit> and %ah<hex-digit>, all driven
// by the per-rule counter.
func (e *emitter) alternation(rule string, i int) int {
	if i >= len(rule) {
		logger.Warn("Rename rule ends inside %%a")
		return i
	}

	counter := int64(uint32(e.ev.counter(e.jobID)))
	switch rule[i] {
	case 'b':
		e.emitByte('0' + byte(counter&1))
		return i + 1

	case 'd':
		if i+1 >= len(rule) || rule[i+1] < '0' || rule[i+1] > '9' {
			logger.Warn("Rename rule %%ad needs a decimal digit")
			return i + 1
		}
		modulus := int64(rule[i+1]-'0') + 1
		e.emitByte('0' + byte(counter%modulus))
		return i + 2

	case 'h':
		if i+1 >= len(rule) {
			logger.Warn("Rename rule %%ah needs a hex digit")
			return i + 1
		}
		digit := rule[i+1]
		value, upper, ok := hexDigitValue(digit)
		if !ok {
			logger.Warn("Rename rule %%ah%c is not a hex digit", digit)
			return i + 2
		}
		v := byte(counter % int64(value+1))
		e.emitByte(hexDigit(v, upper))
		return i + 2

	default:
		logger.Warn("Unknown alternation %%a%c, skipping", rule[i])
		return i + 1
	}
}

func hexDigitValue(b byte) (value int, upper bool, ok bool) {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0'), false, true
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10, false, true
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10, true, true
	default:
		return 0, false, false
	}
}

func hexDigit(v byte, upper bool) byte {
	if v < 10 {
		return '0' + v
	}
	if upper {
		return 'A' + v - 10
	}
	return 'a' + v - 10
}

// parseNumber consumes a decimal run starting at rule[i].
func parseNumber(rule string, i int) (int, int, bool) {
	start := i
	v := 0
	for i < len(rule) && rule[i] >= '0' && rule[i] <= '9' {
		v = v*10 + int(rule[i]-'0')
		if v > 1<<20 {
			return 0, i, false
		}
		i++
	}
	if i == start {
		return 0, i, false
	}
	return v, i, true
}
