// Package errors defines the typed application error returned across the
// HTTP boundary. Type values are stable and safe to show to clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType is the stable, client-visible error code.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeRateLimited  ErrorType = "rate_limited"

	ErrorTypeUnknownPackage       ErrorType = "unknown_package"
	ErrorTypeVerificationFailed   ErrorType = "payment_verification_failed"
	ErrorTypePaymentNotCaptured   ErrorType = "payment_not_captured"
	ErrorTypeProcessorUnavailable ErrorType = "processor_unavailable"
	ErrorTypeActiveSubscription   ErrorType = "active_subscription_exists"
)

// AppError is an error with a client-facing type, message and HTTP status.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	e := &AppError{Type: t, Message: message, Code: code}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

func NewRateLimitedError(message string) *AppError {
	return newAppError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, nil)
}

func NewUnknownPackageError(name string) *AppError {
	return newAppError(ErrorTypeUnknownPackage, http.StatusBadRequest, "unknown package", []string{name})
}

// NewVerificationFailedError is shared by every payment check so callers
// cannot learn which one failed.
func NewVerificationFailedError() *AppError {
	return newAppError(ErrorTypeVerificationFailed, http.StatusBadRequest, "payment verification failed", nil)
}

func NewPaymentNotCapturedError() *AppError {
	return newAppError(ErrorTypePaymentNotCaptured, http.StatusConflict, "payment has not been captured yet", nil)
}

func NewProcessorUnavailableError() *AppError {
	return newAppError(ErrorTypeProcessorUnavailable, http.StatusServiceUnavailable, "payment processor unavailable, retry later", nil)
}

func NewActiveSubscriptionError(details ...string) *AppError {
	return newAppError(ErrorTypeActiveSubscription, http.StatusConflict, "an active subscription already exists", details)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from err's chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsConflictError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeConflict
}

func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsDuplicateError reports whether err is a unique-key violation from
// MySQL or SQLite.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
