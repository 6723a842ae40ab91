package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable, caller-facing classification of a failure.
type ErrorCode string

const (
	CodeBadRequest    ErrorCode = "BAD_REQUEST"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeNotFound      ErrorCode = "NOT_FOUND"
)

// Error carries a public error code alongside a human-readable message.
// Boundaries branch on Code, never on message text.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a coded error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds a coded error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError normalizes err into an *Error. Errors that do not carry a code
// classify as PROVIDER_ERROR: a remote failure of unknown shape is the
// provider's fault, never the caller's.
func AsError(err error) *Error {
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	return &Error{Code: CodeProviderError, Message: err.Error()}
}
