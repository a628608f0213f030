package kvstore

import (
	"context"
	"strings"
)

// PrefixedStore scopes every key of an underlying store under a fixed prefix,
// letting many logical clients share one physical store.
type PrefixedStore struct {
	inner  Store
	prefix string
}

// Prefixed wraps store so that key k is stored as prefix+k.
func Prefixed(store Store, prefix string) *PrefixedStore {
	return &PrefixedStore{inner: store, prefix: prefix}
}

func (p *PrefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *PrefixedStore) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *PrefixedStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	scoped := make(map[string][]byte, len(entries))
	for k, v := range entries {
		scoped[p.prefix+k] = v
	}
	return p.inner.SetMany(ctx, scoped)
}

func (p *PrefixedStore) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

// Subscribe forwards only changes under the prefix, with the prefix stripped.
func (p *PrefixedStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	in, err := p.inner.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Change, subscriberBuffer)
	go func() {
		defer close(out)
		for c := range in {
			key, ok := strings.CutPrefix(c.Key, p.prefix)
			if !ok {
				continue
			}
			c.Key = key
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (p *PrefixedStore) Ping(ctx context.Context) error {
	return p.inner.Ping(ctx)
}
