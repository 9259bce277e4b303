package utils

import "fmt"

type AppError struct {
	Code    string
	Message string
	Status  int   // HTTP status for transport failures, 0 otherwise
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound  = "NOT_FOUND"
	ErrDuplicate = "DUPLICATE"

	// Input errors, resolved locally before any network call
	ErrValidation = "VALIDATION_ERROR"

	// Transport errors: non-2xx responses and network failures
	ErrTransport = "TRANSPORT_ERROR"

	// Authentication errors
	ErrUnauthorized   = "UNAUTHORIZED"
	ErrSessionExpired = "SESSION_EXPIRED"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewValidationError(field string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: field + " must not be empty",
	}
}

func NewNotFoundError(entity string, id int64) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found: %d", entity, id),
	}
}

// NewTransportError wraps a failed request. Status is zero when the
// request never reached the server.
func NewTransportError(status int, message string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrTransport,
		Message: message,
		Status:  status,
		Origin:  originalErr,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
