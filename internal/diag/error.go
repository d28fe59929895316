package diag

import (
	"fmt"

	"github.com/AayushMainali-Github/skepa-lang/internal/source"
)

// Error is a structured diagnostic which retains the span of source text on
// which it was raised, its stable label, and a human-readable message.
// Modelled directly on pkg/sexp.SyntaxError: a compiler phase collects these
// as it runs to completion, rather than aborting at the first one.
type Error struct {
	Label Label
	Span  source.Span
	File  string
	Msg   string
}

// New constructs a diagnostic Error.
func New(label Label, span source.Span, file string, format string, args ...any) *Error {
	return &Error{Label: label, Span: span, File: file, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s:%s: %s", e.Label, e.File, e.Span, e.Msg)
}

// Errors is a collected batch of diagnostics from a single phase.
type Errors []*Error

func (es Errors) Error() string {
	if len(es) == 0 {
		return "no errors"
	}

	s := es[0].Error()
	if len(es) > 1 {
		s = fmt.Sprintf("%s (and %d more)", s, len(es)-1)
	}

	return s
}

// HasErrors reports whether this batch is non-empty.
func (es Errors) HasErrors() bool {
	return len(es) > 0
}

// ExitCode returns the exit code for the first (and by convention dominant)
// label in the batch, or 0 if the batch is empty.
func (es Errors) ExitCode() int {
	if len(es) == 0 {
		return 0
	}

	return es[0].Label.ExitCode()
}
