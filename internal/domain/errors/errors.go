package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrSessionExpired    = errors.New("session expired")
	ErrGatewayFailure    = errors.New("payments gateway failure")
	ErrNotCompliant      = errors.New("payer is not compliant")
	ErrUnsupportedChain  = errors.New("unsupported chain")
	ErrWrongWalletChain  = errors.New("wallet is on the wrong chain")
	ErrRecurrenceStopped = errors.New("recurrence already stopped")
)

// AppError represents an application error with an HTTP status code
type AppError struct {
	Code    int    `json:"code"`
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
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// GatewayError wraps a failed upstream call, preserving the upstream message
// for the logs while the caller sees an internal error. cause may be nil.
func GatewayError(message string, cause error) *AppError {
	err := ErrGatewayFailure
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrGatewayFailure, cause)
	}
	return NewAppError(http.StatusInternalServerError, message, err)
}

// IsNotFound reports whether err is, or wraps, the not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
