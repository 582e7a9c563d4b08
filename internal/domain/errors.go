package domain

import "errors"

type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION"
	CodeNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeBusinessRule ErrorCode = "BUSINESS_RULE_VIOLATION"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeInternal     ErrorCode = "INTERNAL"
)

// Error is a business failure with a stable code the transport layer can map
// to a status without inspecting messages.
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func E(code ErrorCode, message string) error {
	return &Error{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, cause error) error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the business code from an error chain. Anything without a
// code is treated as INTERNAL.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
