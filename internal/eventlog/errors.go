package eventlog

import "fmt"

// ParseError is the only fatal reader error: the source is not a
// line-delimited record stream at all, or zero valid records could be
// recovered from it. Individual malformed records never produce one.
type ParseError struct {
	message string
	err     error
}

// NewParseError creates a new parse error
func NewParseError(format string, args ...interface{}) *ParseError {
	return &ParseError{message: fmt.Sprintf(format, args...)}
}

// WrapParseError creates a parse error wrapping an underlying cause
func WrapParseError(err error, format string, args ...interface{}) *ParseError {
	return &ParseError{message: fmt.Sprintf(format, args...), err: err}
}

// Error returns the error message
func (e *ParseError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Unwrap returns the underlying cause, if any
func (e *ParseError) Unwrap() error {
	return e.err
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}
