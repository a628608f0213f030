// Package backend is a typed client for the storefront's PHP REST backend.
//
// Every endpoint answers with the envelope {"success":bool,"data":...,"message":string}.
// Transport failures and non-2xx statuses are mapped through
// httpclient.ParseResponseError; a 2xx with success=false becomes ErrRejected.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/httpclient"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/logger"
	"github.com/Sandanitin/AJ-Mana-Style/pkg/tracing"
)

const (
	serviceName  = "backend"
	tracerName   = "github.com/Sandanitin/AJ-Mana-Style/internal/backend"
	maxBodyBytes = 4 << 20
)

// ErrRejected is wrapped by errors for requests the backend answered with success=false.
var ErrRejected = errors.New("backend rejected request")

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback turns an open breaker into a retryable 503.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("the store backend is temporarily unavailable, please retry shortly")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client talks to the backend at a base URL such as https://example.com/backend/api.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a backend client.
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// call sends body as JSON (when non-nil) and decodes the envelope's data into out (when non-nil).
func (c *Client) call(ctx context.Context, method, endpoint string, query url.Values, body, out any) (err error) {
	ctx, span := tracing.StartClientSpan(ctx, tracerName, "backend "+method+" "+endpoint,
		attribute.String("http.request.method", method),
		attribute.String("backend.endpoint", endpoint),
	)
	defer func() { tracing.EndSpan(span, err) }()

	resp, err := c.send(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = endpoint + " request failed"
		}
		c.logger.WarnContext(ctx, "backend rejected request",
			slog.String("endpoint", endpoint),
			slog.String("method", method),
			slog.String("message", msg),
		)
		return &apperrors.AppError{
			Code:    "BACKEND_REJECTED",
			Message: msg,
			Status:  http.StatusUnprocessableEntity,
			Err:     ErrRejected,
		}
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	return nil
}

// send performs the request and returns a 2xx response with an open body.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", endpoint, err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	tracing.InjectHTTP(ctx, req.Header)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("call %s %s: %w", method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	return resp, nil
}
