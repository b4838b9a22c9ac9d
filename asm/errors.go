package asm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/shbin/isa"
)

// ErrSessionUsed is returned when Run is called on a session twice.
var ErrSessionUsed = errors.New("asm: session already used")

// SourceError is an assembly error with source location information.
type SourceError struct {
	Kind    isa.ErrorKind
	Message string
	Span    Span
	Text    string // Offending source line (for context display)
	Err     error  // Underlying error, if any
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	switch {
	case e.Span.Start.Line == 0 && e.Span.Source == "":
		return e.Message
	case e.Span.Start.Line == 0:
		return fmt.Sprintf("%s: %s", e.Span.Source, e.Message)
	case e.Span.Source == "":
		return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
	default:
		return fmt.Sprintf("%s:%s: %s", e.Span.Source, e.Span.Start, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// FormatWithContext returns the error message with source context.
// Shows the offending line with a caret under the error column.
func (e *SourceError) FormatWithContext() string {
	if e.Span.Start.Line == 0 {
		return fmt.Sprintf("error[%s]: %s\n", e.Kind, e.Error())
	}

	line := strings.TrimRight(e.Text, "\r\n")
	col := e.Span.Start.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error[%s]: %s\n", e.Kind, e.Message)
	if e.Span.Source != "" {
		fmt.Fprintf(&sb, "  --> %s:%d:%d\n", e.Span.Source, e.Span.Start.Line, col)
	} else {
		fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Span.Start.Line, col)
	}
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Span.Start.Line, expandTabs(line))
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", len(expandTabs(line[:col-1]))))

	return sb.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// newSourceError wraps err with the position of col on line l.
func newSourceError(source string, l Line, col int, err error) *SourceError {
	return &SourceError{
		Kind:    isa.KindOf(err),
		Message: err.Error(),
		Span:    l.span(source, col),
		Text:    l.Text,
		Err:     err,
	}
}

// SourceErrors represents a list of source errors.
type SourceErrors []*SourceError

// Error implements the error interface.
func (el SourceErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (el SourceErrors) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// FormatAll returns all errors formatted with context.
func (el SourceErrors) FormatAll() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.FormatWithContext())
	}
	return sb.String()
}

// Add adds an error to the list.
func (el *SourceErrors) Add(err *SourceError) {
	*el = append(*el, err)
}

// Len returns the number of errors.
func (el SourceErrors) Len() int {
	return len(el)
}

// HasErrors returns true if there are any errors.
func (el SourceErrors) HasErrors() bool {
	return len(el) > 0
}

// errorf builds a typed error for the assembler's own checks.
func errorf(kind isa.ErrorKind, format string, args ...interface{}) error {
	return &isa.Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
