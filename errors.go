package petango

import (
	"errors"
	"fmt"
)

// Error kinds reported by the client.
const (
	ErrorKindInvalidArgument = "InvalidArgument"
	ErrorKindParse           = "ParseError"
	ErrorKindNotFound        = "NotFound"
	ErrorKindTransport       = "TransportError"
)

// Sentinel errors for matching with errors.Is. Any *Error of the same kind matches.
var (
	// ErrInvalidArgument is returned for unknown species or an unusable endpoint URL.
	ErrInvalidArgument = &Error{Kind: ErrorKindInvalidArgument, Message: "invalid argument"}

	// ErrParse is returned when a response document cannot be parsed or selected.
	ErrParse = &Error{Kind: ErrorKindParse, Message: "parse error"}

	// ErrNotFound is returned when the service answered with nothing usable.
	ErrNotFound = &Error{Kind: ErrorKindNotFound, Message: "not found"}

	// ErrTransport is returned when the HTTP exchange itself failed.
	ErrTransport = &Error{Kind: ErrorKindTransport, Message: "transport error"}
)

// Error is the single error type returned across the package API.
type Error struct {
	Kind    string
	Message string
	Cause   error

	Endpoint   string
	Species    string
	Expression string
	Document   string
	StatusCode int
	Query      map[string]string
}

// Error implements error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Endpoint)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds for errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *Error) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Kind: %s\n", e.Kind)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.Endpoint != "" {
		info += fmt.Sprintf("Endpoint: %s\n", e.Endpoint)
	}
	if e.Species != "" {
		info += fmt.Sprintf("Species: %s\n", e.Species)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.Expression != "" {
		info += fmt.Sprintf("Expression: %s\n", e.Expression)
	}
	if e.Document != "" {
		info += fmt.Sprintf("Document: %d bytes\n", len(e.Document))
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether repeating the same call later might succeed.
// Empty answers and transport failures are retryable; bad input and
// unparseable documents are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case ErrorKindNotFound, ErrorKindTransport:
			return true
		}
	}
	return false
}

// ErrorKind returns the kind of a package error, or "" for anything else.
func ErrorKind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
