package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different kinds of failures a run can hit
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeHTTPStatus   ErrorType = "http_status"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeMissingField ErrorType = "missing_field"
	ErrorTypeFilesystem   ErrorType = "filesystem"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeAPI          ErrorType = "api"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a classified error. Code carries the HTTP status when
// one is known.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Network wraps a transport failure
func Network(err error) *Error {
	return &Error{Type: ErrorTypeNetwork, Message: err.Error(), Err: err}
}

// Status reports a non-2xx response
func Status(code int, status string) *Error {
	return &Error{Type: ErrorTypeHTTPStatus, Message: fmt.Sprintf("unexpected status %s", status), Code: code}
}

// Parsing wraps a response that could not be decoded
func Parsing(err error) *Error {
	return &Error{Type: ErrorTypeParsing, Message: err.Error(), Err: err}
}

// MissingField reports a response without an expected field
func MissingField(field string) *Error {
	return &Error{Type: ErrorTypeMissingField, Message: fmt.Sprintf("response has no %s", field)}
}

// API reports an error object returned in a 200 response body
func API(code, info string) *Error {
	return &Error{Type: ErrorTypeAPI, Message: fmt.Sprintf("%s: %s", code, info)}
}

// Filesystem wraps a local I/O failure on path
func Filesystem(path string, err error) *Error {
	return &Error{Type: ErrorTypeFilesystem, Message: fmt.Sprintf("%s: %v", path, err), Err: err}
}

// Config wraps an invalid configuration
func Config(err error) *Error {
	return &Error{Type: ErrorTypeConfig, Message: err.Error(), Err: err}
}

// TypeOf returns the ErrorType of the first *Error in err's chain, or
// ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsStatus reports whether err is an HTTP status error with the given code
func IsStatus(err error, code int) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == ErrorTypeHTTPStatus && e.Code == code
}
