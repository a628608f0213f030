package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
)

const maxErrorBody = 64 << 10

// errorBody accepts the error shapes upstreams answer with: the
// {"error":{"code","message"}} envelope, the backend's
// {"success":false,"message"} and a bare {"error":"..."}.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func (b errorBody) codeAndMessage() (code, message string) {
	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	var flat string
	switch {
	case json.Unmarshal(b.Error, &nested) == nil && nested.Message != "":
		return nested.Code, nested.Message
	case json.Unmarshal(b.Error, &flat) == nil && flat != "":
		return "", flat
	}
	return "", b.Message
}

// ParseResponseError consumes and closes a non-2xx response and returns an
// AppError named after service. The upstream's message is kept when the
// body carries one.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apperrors.BadGateway("", fmt.Sprintf("%s: status %d, unreadable body: %v", service, resp.StatusCode, err))
	}

	var code, message string
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		code, message = body.codeAndMessage()
	} else {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return statusError(resp.StatusCode, code, message, service)
}

func statusError(status int, code, message, service string) *apperrors.AppError {
	qualified := service + ": " + message

	switch status {
	case http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
	case http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case http.StatusConflict:
		return apperrors.Conflict(qualified)
	case http.StatusGone:
		return apperrors.Gone(qualified)
	case http.StatusUnprocessableEntity:
		return apperrors.PaymentFailed(qualified)
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		return apperrors.ServiceUnavailable(qualified)
	}
	if status >= http.StatusInternalServerError {
		return apperrors.BadGateway(code, qualified)
	}
	if code == "" {
		code = "UPSTREAM_ERROR"
	}
	return &apperrors.AppError{Code: code, Message: qualified, Status: status}
}
