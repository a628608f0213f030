package kvstore

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// MemoryStore is an in-process Store. Values are copied on the way in and out.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	subMu sync.Mutex
	subs  map[chan Change]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
		subs: make(map[chan Change]struct{}),
	}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, notFound(key)
	}
	return clone(v), nil
}

// Set overwrites key.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.data[key] = clone(value)
	s.mu.Unlock()

	s.notify(Change{Key: key, Origin: OriginFromContext(ctx)})
	return nil
}

// SetMany applies all entries under a single lock.
func (s *MemoryStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	for k, v := range entries {
		s.data[k] = clone(v)
	}
	s.mu.Unlock()

	origin := OriginFromContext(ctx)
	for k := range entries {
		s.notify(Change{Key: k, Origin: origin})
	}
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if existed {
		s.notify(Change{Key: key, Deleted: true, Origin: OriginFromContext(ctx)})
	}
	return nil
}

// Subscribe registers a change listener. Slow listeners miss changes rather
// than blocking writers.
func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, subscriberBuffer)

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.subMu.Unlock()
	}()

	return ch, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) notify(c Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
