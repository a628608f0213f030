package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) Config {
	return Config{
		Timeout:         2 * time.Second,
		MaxRetries:      retries,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		MaxConnsPerHost: 4,
	}
}

func newRequest(t *testing.T, method, url, body string) *http.Request {
	t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, rdr)
	require.NoError(t, err)
	return req
}

// flaky fails the first n requests with status, then answers 200.
func flaky(n int32, status int, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= n {
			w.WriteHeader(status)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(append([]byte(`ok:`), body...))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Less(t, cfg.RetryWaitMin, cfg.RetryWaitMax)
}

func TestDo_RetriesIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flaky(2, http.StatusBadGateway, &calls))
	defer srv.Close()

	resp, err := New(fastConfig(2)).Do(context.Background(), newRequest(t, http.MethodGet, srv.URL+"/products.php", ""))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flaky(10, http.StatusInternalServerError, &calls))
	defer srv.Close()

	resp, err := New(fastConfig(1)).Do(context.Background(), newRequest(t, http.MethodGet, srv.URL, ""))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_DoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flaky(1, http.StatusInternalServerError, &calls))
	defer srv.Close()

	resp, err := New(fastConfig(3)).Do(context.Background(), newRequest(t, http.MethodPost, srv.URL+"/create-order.php", `{"amount":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "an order must not be placed twice")
}

func TestDo_RetriesPostWithIdempotencyKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flaky(1, http.StatusServiceUnavailable, &calls))
	defer srv.Close()

	req := newRequest(t, http.MethodPost, srv.URL, `{"order_id":"AJM-1"}`)
	req.Header.Set(IdempotencyKeyHeader, "AJM-1")

	resp, err := New(fastConfig(2)).Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `ok:{"order_id":"AJM-1"}`, string(body), "body is replayed on retry")
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_DoesNotRetryClientErrorsOr501(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusNotImplemented} {
		var calls atomic.Int32
		srv := httptest.NewServer(flaky(5, status, &calls))

		resp, err := New(fastConfig(3)).Do(context.Background(), newRequest(t, http.MethodGet, srv.URL, ""))
		require.NoError(t, err)
		resp.Body.Close()
		srv.Close()

		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load(), "status %d", status)
	}
}

func TestDo_RetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := New(fastConfig(1)).Do(context.Background(), newRequest(t, http.MethodGet, srv.URL, ""))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := fastConfig(5)
	cfg.RetryWaitMin = time.Second
	cfg.RetryWaitMax = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(cfg).Do(ctx, newRequest(t, http.MethodGet, srv.URL, ""))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_TransportErrorMentionsAttempts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = New(fastConfig(1)).Do(context.Background(), newRequest(t, http.MethodGet, "http://"+addr+"/faqs.php", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /faqs.php failed after 2 attempt(s)")
}

func TestRetryAfter(t *testing.T) {
	withHeader := func(v string) *http.Response {
		return &http.Response{Header: http.Header{"Retry-After": []string{v}}}
	}

	assert.Equal(t, 3*time.Second, retryAfter(withHeader("3"), time.Millisecond, 10*time.Second))
	assert.Equal(t, 2*time.Second, retryAfter(withHeader("120"), time.Millisecond, 2*time.Second), "capped")
	assert.Equal(t, time.Millisecond, retryAfter(withHeader("Wed, 21 Oct 2026 07:28:00 GMT"), time.Millisecond, time.Second))
	assert.Equal(t, time.Millisecond, retryAfter(&http.Response{Header: http.Header{}}, time.Millisecond, time.Second))
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(errors.New("bad url")))
	assert.True(t, isRetryableError(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))
}

func TestAddJitter(t *testing.T) {
	assert.Zero(t, addJitter(0))

	base := 100 * time.Millisecond
	for i := 0; i < 200; i++ {
		got := addJitter(base)
		assert.GreaterOrEqual(t, got, 75*time.Millisecond)
		assert.LessOrEqual(t, got, 125*time.Millisecond)
	}
}
