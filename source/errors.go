package source

import (
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed centroid source")

// ParseError reports a bad record.
type ParseError struct {
	Line   int
	Reason string
	cause  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("centroid source line %d: %s", e.Line, e.Reason)
	}
	return "centroid source: " + e.Reason
}

// Unwrap returns the underlying cause, always matching ErrMalformed.
func (e *ParseError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrMalformed, e.cause}
	}
	return []error{ErrMalformed}
}
