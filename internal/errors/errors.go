package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotSaved     = "NOT_SAVED"
)

// Domain errors. Packages wrap these with context; callers match them with Is.
var (
	ErrParse = stderrors.New("invalid deck input")

	ErrEmptyDeck   = fmt.Errorf("%w: no valid cards", ErrParse)
	ErrInvalidName = fmt.Errorf("%w: deck name cannot be empty", ErrParse)

	ErrInvalidState = stderrors.New("invalid session state")

	ErrStorageIO      = stderrors.New("storage write failed")
	ErrStorageCorrupt = stderrors.New("stored collection is corrupt")

	ErrAlreadyExists      = stderrors.New("already exists")
	ErrInvalidCredentials = stderrors.New("invalid credentials")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
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
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError creates a new CONFLICT error
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewUnauthorizedError creates a new UNAUTHORIZED error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// FromDomain maps a domain error onto an AppError. Errors that are already
// AppErrors pass through untouched; anything unrecognised becomes internal.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case Is(err, ErrInvalidName):
		return &AppError{Code: ErrCodeValidation, Message: "deck name cannot be empty", Status: http.StatusBadRequest, Err: err}
	case Is(err, ErrEmptyDeck):
		return &AppError{Code: ErrCodeValidation, Message: "no valid cards found, expected lines like 'question - answer'", Status: http.StatusBadRequest, Err: err}
	case Is(err, ErrParse):
		return &AppError{Code: ErrCodeValidation, Message: err.Error(), Status: http.StatusBadRequest, Err: err}
	case Is(err, ErrInvalidState):
		return &AppError{Code: ErrCodeConflict, Message: err.Error(), Status: http.StatusConflict, Err: err}
	case Is(err, ErrAlreadyExists):
		return &AppError{Code: ErrCodeConflict, Message: err.Error(), Status: http.StatusConflict, Err: err}
	case Is(err, ErrInvalidCredentials):
		return &AppError{Code: ErrCodeUnauthorized, Message: "invalid username or password", Status: http.StatusUnauthorized, Err: err}
	case Is(err, ErrStorageIO):
		return &AppError{Code: ErrCodeNotSaved, Message: "change applied but not saved, retry later", Status: http.StatusServiceUnavailable, Err: err}
	default:
		return NewInternalError(err)
	}
}
