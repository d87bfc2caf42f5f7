package service

import "fmt"

// ErrorCode is the machine-readable error taxonomy from the API contract.
// Each value maps to exactly one HTTP status at the handler layer.
type ErrorCode string

const (
	ErrValidation   ErrorCode = "validation_error" // 400
	ErrBadRequest   ErrorCode = "bad_request"       // 400
	ErrUnauthorized ErrorCode = "unauthorized"      // 401
	ErrNotFound     ErrorCode = "not_found"         // 404
	ErrConflict     ErrorCode = "conflict"          // 409
	ErrGone         ErrorCode = "gone"              // 410
	ErrInternal     ErrorCode = "internal_error"    // 500
)

// Error is the tagged error sum used across the service layer. Handlers
// translate it directly into the `{"error":{code,message,details}}`
// envelope; nothing downstream of a service call needs to pattern-match
// on store-specific error types.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newErr(code ErrorCode, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func ValidationError(message string, details map[string]any) *Error {
	return newErr(ErrValidation, message, details)
}

func BadRequestError(message string, details map[string]any) *Error {
	return newErr(ErrBadRequest, message, details)
}

func UnauthorizedError(message string) *Error {
	return newErr(ErrUnauthorized, message, nil)
}

func NotFoundError(message string, details map[string]any) *Error {
	return newErr(ErrNotFound, message, details)
}

func ConflictError(message string, details map[string]any) *Error {
	return newErr(ErrConflict, message, details)
}

func GoneError(message string) *Error {
	return newErr(ErrGone, message, nil)
}

func InternalError(message string, details map[string]any) *Error {
	return newErr(ErrInternal, message, details)
}

// WrapInternal turns an unexpected lower-layer error into an internal
// service error, carrying the original message for logs without
// leaking it to API responses (handlers omit Details for 5xx codes).
func WrapInternal(message string, err error) *Error {
	if err == nil {
		return newErr(ErrInternal, message, nil)
	}
	return newErr(ErrInternal, message, map[string]any{"cause": err.Error()})
}

// AsServiceError unwraps err into *Error if it is (or wraps) one.
func AsServiceError(err error) (*Error, bool) {
	se, ok := err.(*Error)
	return se, ok
}
