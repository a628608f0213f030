package kafka

import (
	"context"
	"sort"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: HeaderEventType, Value: []byte("storefront.cart.updated")}}
	c := NewHeaderCarrier(&headers)

	if got := c.Get(HeaderEventType); got != "storefront.cart.updated" {
		t.Errorf("Get(event_type) = %q", got)
	}
	if got := c.Get("traceparent"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}

	c.Set(HeaderEventType, "storefront.order.placed")
	c.Set(HeaderSource, "storefront")
	if len(headers) != 2 {
		t.Fatalf("headers = %d, want 2 (overwrite plus append)", len(headers))
	}
	if got := c.Get(HeaderEventType); got != "storefront.order.placed" {
		t.Errorf("Get after overwrite = %q", got)
	}

	keys := c.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != HeaderEventType || keys[1] != HeaderSource {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestHeaderCarrier_TraceContextRoundTrip(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	var headers []kafka.Header
	prop := propagation.TraceContext{}
	prop.Inject(ctx, NewHeaderCarrier(&headers))

	if got := NewHeaderCarrier(&headers).Get("traceparent"); got != "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01" {
		t.Fatalf("traceparent = %q", got)
	}

	sc := trace.SpanContextFromContext(prop.Extract(context.Background(), NewHeaderCarrier(&headers)))
	if sc.TraceID() != traceID || sc.SpanID() != spanID || !sc.IsRemote() {
		t.Errorf("extracted %v, want remote %s/%s", sc, traceID, spanID)
	}
}
