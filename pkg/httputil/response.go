// Package httputil writes the JSON envelope every storefront endpoint answers
// with: {"data": ...} on success and {"error": {...}} on failure.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding failures are dropped
// because the header has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps data in the envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteErrorCode writes an error envelope carrying the request's correlation id.
func WriteErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, Response{Error: &ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}

// sentinelResponses maps the shared sentinel errors to envelope codes. The
// INVALID_INPUT message is replaced with the error text.
var sentinelResponses = []struct {
	err     error
	code    string
	message string
}{
	{apperrors.ErrNotFound, "NOT_FOUND", "resource not found"},
	{apperrors.ErrAlreadyExists, "ALREADY_EXISTS", "resource already exists"},
	{apperrors.ErrConflict, "CONFLICT", "request conflicts with current state"},
	{apperrors.ErrInvalidInput, "INVALID_INPUT", ""},
	{apperrors.ErrUnauthorized, "UNAUTHORIZED", "authentication required"},
	{apperrors.ErrForbidden, "FORBIDDEN", "insufficient permissions"},
	{apperrors.ErrGone, "GONE", "resource is no longer available"},
	{apperrors.ErrPaymentFailed, "PAYMENT_FAILED", "payment could not be completed"},
	{apperrors.ErrBadGateway, "BAD_GATEWAY", "upstream returned an invalid response"},
	{apperrors.ErrServiceUnavail, "SERVICE_UNAVAILABLE", "service temporarily unavailable"},
}

// WriteError maps err to a status and envelope. AppErrors carry their own
// code and message; sentinel errors get a generic one; anything else is a
// 500 and is logged with the request-scoped logger, or fallback when the
// request has none.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status := apperrors.HTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			requestLogger(r, fallback).ErrorContext(r.Context(), "request failed",
				slog.String("code", appErr.Code),
				slog.String("error", err.Error()),
			)
		}
		WriteErrorCode(w, r, status, appErr.Code, appErr.Message)
		return
	}

	for _, s := range sentinelResponses {
		if errors.Is(err, s.err) {
			message := s.message
			if message == "" {
				message = err.Error()
			}
			WriteErrorCode(w, r, apperrors.HTTPStatus(err), s.code, message)
			return
		}
	}

	requestLogger(r, fallback).ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	WriteErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
}

func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if l := logger.FromContext(r.Context()); l != slog.Default() || fallback == nil {
		return l
	}
	return fallback
}

// WriteValidationError writes a 400. Validator errors are reported per field.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		WriteErrorCode(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
		Code:      "VALIDATION_ERROR",
		Message:   "request validation failed",
		Fields:    valErr.Fields(),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}})
}
