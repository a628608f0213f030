// Package errors defines the storefront's error vocabulary: sentinels that
// callers match with errors.Is, and AppError, which carries the code and
// HTTP status written to clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels. Every AppError built by this package wraps one of them.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrGone           = errors.New("gone")
	ErrPaymentFailed  = errors.New("payment failed")
	ErrBadGateway     = errors.New("bad gateway")
	ErrServiceUnavail = errors.New("service unavailable")
)

// statusOf is checked in order; the first sentinel in an error's chain wins.
var statusOf = []struct {
	sentinel error
	status   int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrConflict, http.StatusConflict},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrGone, http.StatusGone},
	{ErrPaymentFailed, http.StatusUnprocessableEntity},
	{ErrBadGateway, http.StatusBadGateway},
	{ErrServiceUnavail, http.StatusServiceUnavailable},
}

// AppError is an error with a machine-readable code and the HTTP status it
// is reported with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newError(status int, code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// NotFound reports a missing resource identified by key, e.g. NotFound("pending order", "order_Nx1").
func NotFound(resource, key string) *AppError {
	return newError(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s %q not found", resource, key), ErrNotFound)
}

func InvalidInput(message string) *AppError {
	return newError(http.StatusBadRequest, "INVALID_INPUT", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return newError(http.StatusConflict, "CONFLICT", message, ErrConflict)
}

// Gone reports something that existed but can no longer be used, such as an expired coupon.
func Gone(message string) *AppError {
	return newError(http.StatusGone, "GONE", message, ErrGone)
}

// PaymentFailed reports a declined or unverifiable online payment.
func PaymentFailed(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, "PAYMENT_FAILED", message, ErrPaymentFailed)
}

// BadGateway reports an upstream answer that could not be used.
func BadGateway(code, message string) *AppError {
	if code == "" {
		code = "BAD_GATEWAY"
	}
	return newError(http.StatusBadGateway, code, message, ErrBadGateway)
}

// ServiceUnavailable reports that the store backend cannot be reached right now.
func ServiceUnavailable(message string) *AppError {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message, ErrServiceUnavail)
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", err)
}

// HTTPStatus returns the status for err: an AppError's own status, else the
// status of the first known sentinel it wraps, else 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	for _, s := range statusOf {
		if errors.Is(err, s.sentinel) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
