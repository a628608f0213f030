package kvstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sandanitin/AJ-Mana-Style/pkg/database"
)

// DefaultChangeChannel is the pub/sub channel change notifications are published on.
const DefaultChangeChannel = "storefront:kv:changes"

// Change payloads are "<origin>|<key>", with the key prefixed by
// deletedMarker for deletes.
const (
	deletedMarker   = "-"
	originSeparator = "|"
)

// RedisStore implements Store on Redis. Every write also publishes the key on
// a pub/sub channel so other processes sharing the instance can follow along.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires keys after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithChangeChannel overrides the pub/sub channel name.
func WithChangeChannel(name string) RedisOption {
	return func(s *RedisStore) { s.channel = name }
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:  client,
		channel: DefaultChangeChannel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (data []byte, err error) {
	ctx, end := database.TraceCommand(ctx, "GET", key)
	defer func() {
		if IsNotFound(err) {
			end(nil)
			return
		}
		end(err)
	}()

	data, err = s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set overwrites key and publishes the change.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

// SetMany writes all entries inside one MULTI/EXEC transaction.
func (s *RedisStore) SetMany(ctx context.Context, entries map[string][]byte) (err error) {
	if len(entries) == 0 {
		return nil
	}

	ctx, end := database.TraceCommand(ctx, "MULTI", sortedKeys(entries)...)
	defer func() { end(err) }()

	origin := OriginFromContext(ctx)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, k, v, s.ttl)
			pipe.Publish(ctx, s.channel, changePayload(origin, k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key and publishes the change.
func (s *RedisStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceCommand(ctx, "DEL", key)
	defer func() { end(err) }()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Publish(ctx, s.channel, changePayload(OriginFromContext(ctx), deletedMarker+key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Subscribe listens on the change channel until ctx is done.
func (s *RedisStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)

	// Wait for the subscription confirmation so no change published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", s.channel, err)
	}

	out := make(chan Change, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- parseChange(msg.Payload):
				default:
				}
			}
		}
	}()

	return out, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func changePayload(origin, key string) string {
	return origin + originSeparator + key
}

func parseChange(payload string) Change {
	var c Change
	if origin, rest, ok := strings.Cut(payload, originSeparator); ok {
		c.Origin, payload = origin, rest
	}
	if key, ok := strings.CutPrefix(payload, deletedMarker); ok {
		c.Key, c.Deleted = key, true
		return c
	}
	c.Key = payload
	return c
}

// sortedKeys orders the batch so spans for the same keys look the same.
func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
