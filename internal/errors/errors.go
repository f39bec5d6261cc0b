package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotAuthorized = "NOT_AUTHORIZED"
	ErrCodeRemote        = "REMOTE_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "REMOTE_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Payload []byte // Raw remote response, set for REMOTE_ERROR
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewNotAuthorizedError reports that the spreadsheet service has no active
// session. Recoverable by signing in again.
func NewNotAuthorizedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeNotAuthorized,
		Message: "not authorized",
		Status:  401,
		Err:     err,
	}
}

// NewRemoteError wraps an unexpected response from the spreadsheet service.
// payload is the raw response body, if one was received.
func NewRemoteError(payload []byte, err error) *AppError {
	msg := "unexpected response from spreadsheet service"
	if len(payload) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, truncate(payload, 256))
	}
	return &AppError{
		Code:    ErrCodeRemote,
		Message: msg,
		Status:  502,
		Payload: payload,
		Err:     err,
	}
}

// Code returns the AppError code carried by err, or "" if there is none.
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotAuthorized reports whether err is, or wraps, a NOT_AUTHORIZED error.
func IsNotAuthorized(err error) bool {
	return Code(err) == ErrCodeNotAuthorized
}

// IsRemoteError reports whether err is, or wraps, a REMOTE_ERROR.
func IsRemoteError(err error) bool {
	return Code(err) == ErrCodeRemote
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
