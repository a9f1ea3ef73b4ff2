package pkgerror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Type classifies errors into high-level buckets.
type Type int

const (
	TypeServer     Type = iota // failures on our side or in a dependency
	TypeValidation             // the request itself is wrong
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier mapped to an HTTP status code.
type Code int

const (
	CodeInternal Code = iota
	CodeNotFound
	CodeMethodNotAllowed
	CodeTimeout
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeMethodNotAllowed:
		return "ERROR_CODE_METHOD_NOT_ALLOWED"
	case CodeTimeout:
		return "ERROR_CODE_TIMEOUT"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error wraps an underlying error with a client-facing message, a Type and a
// Code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	case e.errType == TypeValidation:
		return "Validation violation"
	default:
		return "Internal error"
	}
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

// Msg returns the client-facing message.
func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.errType }

func (e *Error) Code() Code { return e.code }

func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind the generic "Internal server error" message.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewInternal is a 500 whose message is shown to the client as is.
func NewInternal(msg string, err error) error {
	return newError(err, msg, TypeServer, CodeInternal)
}

// NewNotFound is a 404 with msg.
func NewNotFound(msg string) error {
	return newError(nil, msg, TypeValidation, CodeNotFound)
}

// NewMethodNotAllowed is a 405 with msg.
func NewMethodNotAllowed(msg string) error {
	return newError(nil, msg, TypeValidation, CodeMethodNotAllowed)
}

// FromContext converts the error of a finished request context: a deadline
// becomes a timeout, anything else a server error.
func FromContext(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(err, "Request timed out", TypeServer, CodeTimeout)
	}
	return NewServer(err)
}
