package script

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds raised by operations.
const (
	KindZeroDivision = "ZeroDivisionError"
	KindIO           = "IOError"
	KindAssertion    = "AssertionError"
	KindName         = "NameError"
	KindType         = "TypeError"
	KindValue        = "ValueError"
	KindImport       = "ImportError"
	KindRuntime      = "RuntimeError"
	KindInterrupted  = "Interrupted"
)

// Frame locates one level of a failing execution.
type Frame struct {
	File  string
	Line  int
	Where string // "steps[2] divide", "main[0] assertPixel", "import common.yaml"
}

func (f Frame) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Where)
	}
	return fmt.Sprintf("%s %s", f.File, f.Where)
}

// ScriptError is a failure escaping a script.
type ScriptError struct {
	// Kind names the error category, e.g. ZeroDivisionError.
	Kind string

	// Message is the human-readable description.
	Message string

	// Frames run from the executed script down to the failing step.
	Frames []Frame

	// Err is the underlying error, if any.
	Err error
}

// Error renders a traceback: the kind and message, then one frame per line.
func (e *ScriptError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	for _, f := range e.Frames {
		b.WriteString("\n    ")
		b.WriteString(f.String())
	}
	return b.String()
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// opError is raised by an operation; exec attaches frames.
type opError struct {
	kind string
	msg  string
	err  error
}

func (e *opError) Error() string { return e.kind + ": " + e.msg }

func (e *opError) Unwrap() error { return e.err }

// raise builds an opError.
func raise(kind, format string, args ...any) error {
	return &opError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// raiseWrap builds an opError carrying an underlying error.
func raiseWrap(kind string, err error, format string, args ...any) error {
	return &opError{kind: kind, msg: fmt.Sprintf(format, args...) + ": " + err.Error(), err: err}
}

// IsScriptError reports whether err is, or wraps, a *ScriptError.
func IsScriptError(err error) bool {
	var se *ScriptError
	return errors.As(err, &se)
}
