// Package sink implements the engine's severity-tagged output channel
// (spec component 2) and the indent counter every generic-parser call
// scopes around itself (spec §5, §9 "indent counter as ambient state").
package sink

import (
	"fmt"
	"io"
)

// Severity is one of the seven tags spec §6 names.
type Severity int

const (
	Good Severity = iota
	Info
	Warn
	Bad
	Item
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Good:
		return "GOOD"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Bad:
		return "BAD"
	case Item:
		return "ITEM"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorKind is the error taxonomy of spec §7: csum | value | length |
// parse | cross. It is attached to every Error-severity line; Fatal lines
// carry no ErrorKind since fatal-ness is a severity, not a taxonomy member
// (mirrored from AcpiViewLog.h, where ACPI_FATAL is an ACPI_LOG_SEVERITY
// value while ACPI_ERROR_CSUM et al. are ACPI_ERROR_TYPE values -- two
// distinct enums in the source, kept distinct here).
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorChecksum
	ErrorValue
	ErrorLength
	ErrorParse
	ErrorCross
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorChecksum:
		return "checksum"
	case ErrorValue:
		return "value"
	case ErrorLength:
		return "length"
	case ErrorParse:
		return "parse"
	case ErrorCross:
		return "cross"
	default:
		return "none"
	}
}

// Options carries the two process-wide flags spec §7 describes: whether
// per-field validators and cross-structure checks run at all, and whether
// warnings/errors are suppressed. Quiet implies !Consistency.
type Options struct {
	Consistency bool
	Quiet       bool
}

// Effective returns the consistency flag actually in force: quiet mode
// forces it off regardless of the caller's setting (spec §7, "user-visible
// behavior").
func (o Options) Effective() bool {
	if o.Quiet {
		return false
	}

	return o.Consistency
}

// Sink is the engine's output channel. One Sink is constructed per
// top-level inspect or generate call and threaded explicitly through the
// call tree -- see SPEC_FULL.md §5 for why this, not a package-level
// global, is this engine's rendering of "process-wide ambient state."
type Sink struct {
	w       io.Writer
	opts    Options
	indent  int
	Errors  int
	Warns   int
}

// New constructs a Sink writing to w under the given Options.
func New(w io.Writer, opts Options) *Sink {
	return &Sink{w: w, opts: opts}
}

// Options returns the Sink's active flags.
func (s *Sink) Options() Options { return s.opts }

// Indent is the scoped-acquisition handle for the ambient indent counter.
// Enter/Exit are meant to be called as `s.Indent().Enter(); defer
// s.Indent().Exit()` around any recursive descent into the generic
// parser, mirroring gIndent++/gIndent-- around ParseAcpi in the source.
type Indent struct{ s *Sink }

func (s *Sink) Indent() Indent { return Indent{s} }

func (i Indent) Enter() { i.s.indent++ }
func (i Indent) Exit() {
	if i.s.indent > 0 {
		i.s.indent--
	}
}

func (i Indent) level() int { return i.s.indent }

func (s *Sink) prefix() string {
	b := make([]byte, s.indent*2)
	for i := range b {
		b[i] = ' '
	}

	return string(b)
}

func (s *Sink) emit(sev Severity, kind ErrorKind, format string, args ...any) {
	if s.opts.Quiet && sev != Fatal {
		return
	}

	msg := fmt.Sprintf(format, args...)

	switch sev {
	case Error:
		s.Errors++
		fmt.Fprintf(s.w, "%s[%s:%s] %s\n", s.prefix(), sev, kind, msg)
	case Fatal:
		s.Errors++
		fmt.Fprintf(s.w, "%s[%s] %s\n", s.prefix(), sev, msg)
	case Warn:
		s.Warns++
		fmt.Fprintf(s.w, "%s[%s] %s\n", s.prefix(), sev, msg)
	default:
		fmt.Fprintf(s.w, "%s[%s] %s\n", s.prefix(), sev, msg)
	}
}

func (s *Sink) Good(format string, args ...any) { s.emit(Good, ErrorNone, format, args...) }
func (s *Sink) Info(format string, args ...any) { s.emit(Info, ErrorNone, format, args...) }
func (s *Sink) Warn(format string, args ...any) { s.emit(Warn, ErrorNone, format, args...) }
func (s *Sink) Bad(format string, args ...any)  { s.emit(Bad, ErrorNone, format, args...) }
func (s *Sink) Item(format string, args ...any) { s.emit(Item, ErrorNone, format, args...) }

// Error logs one taxonomy-tagged error line and increments the error
// counter, regardless of quiet mode's suppression of the rendered text
// (the counter must still reflect reality for callers that inspect
// s.Errors programmatically rather than reading the rendered trace).
func (s *Sink) Error(kind ErrorKind, format string, args ...any) {
	if s.opts.Quiet {
		s.Errors++

		return
	}

	s.emit(Error, kind, format, args...)
}

// Fatal logs an unimplemented-handler or broken-invariant condition. It
// does not panic or exit -- spec §7: fatal aborts the current table only,
// never the process; callers stop iterating after a Fatal call themselves.
func (s *Sink) Fatal(format string, args ...any) { s.emit(Fatal, ErrorNone, format, args...) }
