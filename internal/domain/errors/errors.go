package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrMerchantNotActive  = errors.New("barbershop is not accepting bookings")
)

// Booking errors
var (
	ErrNoServicesSelected      = errors.New("no services selected")
	ErrServiceNotInMerchant    = errors.New("service does not belong to this barbershop")
	ErrGuestIdentityIncomplete = errors.New("guest name and phone are required")
	ErrPastBookingDay          = errors.New("booking day cannot be in the past")
	ErrBookingTooFarAhead      = errors.New("booking day is beyond the booking window")
	ErrDailyLimitReached       = errors.New("daily booking limit reached")
	ErrBookingNotPending       = errors.New("booking is not pending")
	ErrQueueConflict           = errors.New("queue number conflict")
)

// Error codes returned to clients
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeValidation    = "VALIDATION_FAILED"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// ValidationError is a user-correctable rejection. Fields maps a request
// field to its message; Err is the booking sentinel it stands for.
type ValidationError struct {
	Err    error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError with a single field message
func NewValidationError(err error, field, message string) *ValidationError {
	v := &ValidationError{Err: err, Fields: map[string]string{}}
	if field != "" {
		v.Fields[field] = message
	}
	return v
}

// FromError maps any error to an AppError with the matching HTTP status
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return NewAppError(http.StatusBadRequest, CodeValidation, vErr.Error(), err)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenExpired):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	case errors.Is(err, ErrBookingNotPending):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case isBadRequest(err):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	}
	return InternalError(err)
}

func isBadRequest(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrBadRequest,
		ErrMerchantNotActive,
		ErrNoServicesSelected,
		ErrServiceNotInMerchant,
		ErrGuestIdentityIncomplete,
		ErrPastBookingDay,
		ErrBookingTooFarAhead,
		ErrDailyLimitReached,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
