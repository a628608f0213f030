package database

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Sandanitin/AJ-Mana-Style/pkg/database"

type slowLog struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slowCommands atomic.Pointer[slowLog]

// SetSlowCommandLogging logs commands that take at least threshold as
// warnings. A zero threshold or nil logger turns it off.
func SetSlowCommandLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slowCommands.Store(nil)
		return
	}
	slowCommands.Store(&slowLog{threshold: threshold, logger: logger})
}

// TraceCommand starts a client span for one store operation over keys and
// returns the function that ends it:
//
//	ctx, end := database.TraceCommand(ctx, "GET", key)
//	defer func() { end(err) }()
//
// redis.Nil is a miss, not a failure.
func TraceCommand(ctx context.Context, operation string, keys ...string) (context.Context, func(error)) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", operation),
	}
	if len(keys) == 1 {
		attrs = append(attrs, attribute.String("db.redis.key", keys[0]))
	} else {
		attrs = append(attrs, attribute.StringSlice("db.redis.keys", keys))
	}

	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "redis "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		switch {
		case errors.Is(err, redis.Nil):
			span.SetAttributes(attribute.Bool("db.redis.hit", false))
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if sl := slowCommands.Load(); sl != nil && elapsed >= sl.threshold {
			args := []any{
				slog.String("operation", operation),
				slog.Any("keys", keys),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				args = append(args, slog.String("error", err.Error()))
			}
			sl.logger.WarnContext(ctx, "slow redis command", args...)
		}
	}
}
