package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var env Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NotNil(t, env.Error, rr.Body.String())
	assert.Nil(t, env.Data)
	return *env.Error
}

// ============================================================================
// WriteJSON / WriteData
// ============================================================================

func TestWriteData(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteData(rr, http.StatusCreated, map[string]string{"status": "subscribed"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"status":"subscribed"}}`, rr.Body.String())
}

func TestWriteJSON_OmitsEmptyHalves(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusOK, Response{})
	assert.JSONEq(t, `{}`, rr.Body.String())
}

// ============================================================================
// WriteError
// ============================================================================

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "app error keeps its own code",
			err:     apperrors.NotFound("order", "AJM-404"),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: `order "AJM-404" not found`,
		},
		{
			name:    "wrapped app error",
			err:     fmt.Errorf("place order: %w", apperrors.PaymentFailed("payment declined")),
			status:  http.StatusUnprocessableEntity,
			code:    "PAYMENT_FAILED",
			message: "payment declined",
		},
		{
			name:    "not found sentinel",
			err:     fmt.Errorf("shipping zone: %w", apperrors.ErrNotFound),
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "resource not found",
		},
		{
			name:    "invalid input sentinel exposes message",
			err:     fmt.Errorf("quantity must be positive: %w", apperrors.ErrInvalidInput),
			status:  http.StatusBadRequest,
			code:    "INVALID_INPUT",
			message: "quantity must be positive: invalid input",
		},
		{
			name:    "conflict sentinel",
			err:     apperrors.ErrConflict,
			status:  http.StatusConflict,
			code:    "CONFLICT",
			message: "request conflicts with current state",
		},
		{
			name:    "service unavailable sentinel",
			err:     fmt.Errorf("backend: %w", apperrors.ErrServiceUnavail),
			status:  http.StatusServiceUnavailable,
			code:    "SERVICE_UNAVAILABLE",
			message: "service temporarily unavailable",
		},
		{
			name:    "unknown error hides details",
			err:     errors.New("redis: connection refused"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			message: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), tt.err, testLogger())

			assert.Equal(t, tt.status, rr.Code)
			got := decodeError(t, rr)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestWriteError_RequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/orders", nil)
	rr := httptest.NewRecorder()
	WriteError(rr, req, apperrors.ErrNotFound, testLogger())
	assert.Empty(t, decodeError(t, rr).RequestID)

	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-77"))
	rr = httptest.NewRecorder()
	WriteError(rr, req, apperrors.InvalidInput("cart is empty"), testLogger())
	assert.Equal(t, "corr-77", decodeError(t, rr).RequestID)
}

func TestWriteError_LogsInternalErrorsToRequestLogger(t *testing.T) {
	var scoped, fallback bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(logger.NewContext(req.Context(), slog.New(slog.NewJSONHandler(&scoped, nil))))

	WriteError(httptest.NewRecorder(), req, errors.New("boom"), slog.New(slog.NewJSONHandler(&fallback, nil)))

	assert.Contains(t, scoped.String(), "internal error")
	assert.Contains(t, scoped.String(), "boom")
	assert.Empty(t, fallback.String())
}

func TestWriteError_FallbackLogger(t *testing.T) {
	var fallback bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

	WriteError(httptest.NewRecorder(), req, apperrors.Internal(errors.New("disk full")), slog.New(slog.NewJSONHandler(&fallback, nil)))

	assert.Contains(t, fallback.String(), "request failed")
	assert.Contains(t, fallback.String(), "INTERNAL_ERROR")
}

func TestWriteError_ClientErrorsNotLogged(t *testing.T) {
	var fallback bytes.Buffer
	WriteError(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil),
		apperrors.NotFound("faq", "3"), slog.New(slog.NewJSONHandler(&fallback, nil)))
	assert.Empty(t, fallback.String())
}

// ============================================================================
// WriteValidationError
// ============================================================================

func TestWriteValidationError_Fields(t *testing.T) {
	type subscribe struct {
		Email string `validate:"required,email"`
	}
	err := validator.Validate(subscribe{Email: "not-an-email"})
	require.Error(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/newsletter/subscribe", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "corr-v"))
	rr := httptest.NewRecorder()
	WriteValidationError(rr, req, err)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	got := decodeError(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", got.Code)
	assert.Equal(t, map[string]string{"Email": "must be a valid email address"}, got.Fields)
	assert.Equal(t, "corr-v", got.RequestID)
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteValidationError(rr, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("quantity must be at least 1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	got := decodeError(t, rr)
	assert.Equal(t, "INVALID_INPUT", got.Code)
	assert.Equal(t, "quantity must be at least 1", got.Message)
	assert.Empty(t, got.Fields)
}
