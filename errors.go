package kvconf

import "fmt"

// SyntaxErrorKind says what was wrong with a malformed line.
type SyntaxErrorKind int

const (
	// MissingEquals is reported for a line that has content but no '='.
	MissingEquals SyntaxErrorKind = iota
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case MissingEquals:
		return "missing '='"
	}
	return fmt.Sprintf("SyntaxErrorKind(%d)", int(k))
}

// A SyntaxError reports a line that is neither blank, a comment, nor a
// key=value pair. Line is 1-based, or 0 when the line number is unknown.
type SyntaxError struct {
	Line int
	Kind SyntaxErrorKind
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("syntax error: %s", e.Kind)
	}
	return fmt.Sprintf("line %d: syntax error: %s", e.Line, e.Kind)
}

// ErrorKind classifies the errors returned while decoding.
type ErrorKind int

const (
	// Custom covers syntax errors, line source failures, numeric parse
	// failures and errors raised by the value being decoded.
	Custom ErrorKind = iota
	// UnexpectedEOF means a key or value was requested after the last line.
	UnexpectedEOF
	// InvalidState means the document cannot provide what was requested: a
	// nested value, an unknown key, or keys left over after decoding.
	InvalidState
)

func (k ErrorKind) String() string {
	switch k {
	case Custom:
		return "custom"
	case UnexpectedEOF:
		return "unexpected EOF"
	case InvalidState:
		return "invalid state error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned by every decoding entry point.
//
// Errors from the line source and syntax errors are folded into Custom
// errors. The original error stays reachable through [errors.As], so
// a *[SyntaxError] or an I/O error can still be inspected.
type Error struct {
	Kind ErrorKind
	Msg  string
	err  error
}

var (
	// ErrUnexpectedEOF matches any *Error of kind UnexpectedEOF with [errors.Is].
	ErrUnexpectedEOF = &Error{Kind: UnexpectedEOF}
	// ErrInvalidState matches any *Error of kind InvalidState with [errors.Is].
	ErrInvalidState = &Error{Kind: InvalidState}
)

func (e *Error) Error() string {
	switch {
	case e.Kind == Custom:
		return e.Msg
	case e.Msg == "":
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is one of the sentinel errors of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.err == nil && t.Kind == e.Kind
}

// Errorf returns a Custom error. It is meant for [Unmarshaler] and
// [ValueUnmarshaler] implementations that reject a value. The %w verb is
// supported.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: Custom, Msg: err.Error(), err: err}
}

func invalidState(format string, args ...any) *Error {
	return &Error{Kind: InvalidState, Msg: fmt.Sprintf(format, args...)}
}

// custom folds err into a Custom error. Errors that already are *Error pass
// through unchanged.
func custom(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: Custom, Msg: err.Error(), err: err}
}
