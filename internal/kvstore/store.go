// Package kvstore provides the durable key-value store that backs the
// cart and wishlist containers.
package kvstore

import (
	"context"
	"errors"

	apperrors "github.com/Sandanitin/AJ-Mana-Style/pkg/errors"
)

// Change is emitted after a key has been written or deleted. Origin is the
// writer id attached to the write's context with WithOrigin, if any.
type Change struct {
	Key     string
	Deleted bool
	Origin  string
}

type originKey struct{}

// WithOrigin tags writes made with ctx, so a subscriber can recognise its
// own changes. id must not contain '|'.
func WithOrigin(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, originKey{}, id)
}

// OriginFromContext returns the writer id set by WithOrigin.
func OriginFromContext(ctx context.Context) string {
	id, _ := ctx.Value(originKey{}).(string)
	return id
}

// Store is a string-keyed byte store. Writes are full overwrites.
type Store interface {
	// Get returns the value stored under key. A missing key yields an error
	// wrapping apperrors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// SetMany writes every entry or none of them.
	SetMany(ctx context.Context, entries map[string][]byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Subscribe streams changes until ctx is cancelled, after which the
	// returned channel is closed.
	Subscribe(ctx context.Context) (<-chan Change, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func notFound(key string) error {
	return apperrors.NotFound("key", key)
}
