package errsink

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ksc-lang/ksc/internal/ast"
)

// Kind names an error taxon, not a Go type: every diagnostic the lexer
// or parser can raise is one of these.
type Kind int

const (
	LexUnknownChar Kind = iota
	LexBadNumber
	ParseUnexpectedToken
	ParseUndefinedCallee
	ParseBadOperatorSymbol
	ParseBadOperatorPriority
	ParseDuplicateOperator
	ParseDuplicateFunction
	IoOpenFailed
)

func (k Kind) String() string {
	switch k {
	case LexUnknownChar:
		return "LexUnknownChar"
	case LexBadNumber:
		return "LexBadNumber"
	case ParseUnexpectedToken:
		return "ParseUnexpectedToken"
	case ParseUndefinedCallee:
		return "ParseUndefinedCallee"
	case ParseBadOperatorSymbol:
		return "ParseBadOperatorSymbol"
	case ParseBadOperatorPriority:
		return "ParseBadOperatorPriority"
	case ParseDuplicateOperator:
		return "ParseDuplicateOperator"
	case ParseDuplicateFunction:
		return "ParseDuplicateFunction"
	case IoOpenFailed:
		return "IoOpenFailed"
	default:
		return "Unknown"
	}
}

// FatalError is the value a Sink panics with on a fatal report, and the
// value Parser.Parse returns (as a plain error) once it recovers that
// panic at its top-level boundary.
type FatalError struct {
	Kind    Kind
	Loc     ast.SourceLoc
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal: %s: %s", e.Loc, e.Kind, e.Message)
}

// Report is a single non-fatal diagnostic, retained for callers (tests,
// a future language-server front end) that want to inspect what was
// reported without re-parsing stderr text.
type Report struct {
	Kind    Kind
	Loc     ast.SourceLoc
	Message string
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s: %s", r.Loc, r.Kind, r.Message)
}

// Sink is the shared diagnostic entry point. The zero value is not
// usable; construct with New.
type Sink struct {
	w        io.Writer
	fatal    *color.Color
	nonFatal *color.Color
	reports  []Report
}

// New returns a Sink writing colorized diagnostics to w. Colorization
// follows fatih/color's own terminal detection (color.NoColor), which
// looks at standard output, not at w: output degrades to plain text when
// standard output is not a terminal.
func New(w io.Writer) *Sink {
	return &Sink{
		w:        w,
		fatal:    color.New(color.FgRed, color.Bold),
		nonFatal: color.New(color.FgYellow),
	}
}

// NonFatal prints a recoverable diagnostic and records it. The caller is
// responsible for resuming after it; NonFatal itself never alters
// control flow.
func (s *Sink) NonFatal(kind Kind, loc ast.SourceLoc, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.reports = append(s.reports, Report{Kind: kind, Loc: loc, Message: msg})
	s.fprint(s.nonFatal, loc, kind, msg)
}

// Fatal prints an unrecoverable diagnostic and panics with *FatalError.
// Call only from within a Parse (or similarly scoped) call that installs
// a matching recover; it is never appropriate to call Fatal from
// steady-state library code that outlives a single compilation attempt.
func (s *Sink) Fatal(kind Kind, loc ast.SourceLoc, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.fprint(s.fatal, loc, kind, msg)
	panic(&FatalError{Kind: kind, Loc: loc, Message: msg})
}

func (s *Sink) fprint(c *color.Color, loc ast.SourceLoc, kind Kind, msg string) {
	prefix := "error"
	if c != nil {
		c.Fprintf(s.w, "%s: %s: %s: ", loc, prefix, kind)
		fmt.Fprintln(s.w, msg)
		return
	}
	fmt.Fprintf(s.w, "%s: %s: %s: %s\n", loc, prefix, kind, msg)
}

// Reports returns every non-fatal diagnostic recorded so far.
func (s *Sink) Reports() []Report {
	return append([]Report(nil), s.reports...)
}

// HasErrors reports whether any non-fatal diagnostic has been recorded.
func (s *Sink) HasErrors() bool {
	return len(s.reports) > 0
}

// Recover converts a panicking *FatalError into a returned error. Call
// it deferred at the top of any function that may call Sink.Fatal
// transitively and that should turn the panic into an ordinary error
// return instead of crashing the process — e.g. Parser.Parse.
func Recover(errp *error) {
	if r := recover(); r != nil {
		if fe, ok := r.(*FatalError); ok {
			*errp = fe
			return
		}
		panic(r)
	}
}
