package cart

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Sandanitin/AJ-Mana-Style/internal/kvstore"
)

// DefaultSession is used when a client does not identify itself.
const DefaultSession = "default"

// Registry defaults.
const (
	DefaultMaxSessions = 10000
	DefaultIdleTTL     = 30 * time.Minute
)

const sessionKeyPrefix = "session:"

var errWatchEnded = errors.New("store change feed ended")

// Registry hands out one Container per session, each over its own key
// namespace of a shared store. Containers are created on first use and
// dropped once idle for the idle TTL or when the registry is full, least
// recently used first. A dropped session is hydrated again on its next use.
//
// Watch follows external writes for every live container over a single
// store subscription.
type Registry struct {
	store       kvstore.Store
	logger      *slog.Logger
	observers   []Observer
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time

	mu         sync.Mutex
	containers map[string]*list.Element
	lru        *list.List // front is most recently used
}

type registryEntry struct {
	session  string
	c        *Container
	lastUsed time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithContainerObserver attaches o to every container the registry creates.
func WithContainerObserver(o Observer) RegistryOption {
	return func(r *Registry) { r.observers = append(r.observers, o) }
}

// WithMaxSessions caps the number of live containers. Zero or less keeps
// the default.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxSessions = n
		}
	}
}

// WithIdleTTL drops containers unused for ttl. Zero or less keeps the default.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

// NewRegistry creates an empty registry over store.
func NewRegistry(store kvstore.Store, logger *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:       store,
		logger:      logger,
		maxSessions: DefaultMaxSessions,
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
		containers:  make(map[string]*list.Element),
		lru:         list.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionPrefix is the key namespace of a session in the shared store.
func SessionPrefix(session string) string {
	return sessionKeyPrefix + session + ":"
}

// Get returns the container for session, hydrating it on first access.
func (r *Registry) Get(ctx context.Context, session string) *Container {
	if session == "" {
		session = DefaultSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictIdleLocked(now)

	if el, ok := r.containers[session]; ok {
		e := el.Value.(*registryEntry)
		e.lastUsed = now
		r.lru.MoveToFront(el)
		return e.c
	}

	opts := []Option{WithSession(session)}
	for _, o := range r.observers {
		opts = append(opts, WithObserver(o))
	}
	c := New(ctx, kvstore.Prefixed(r.store, SessionPrefix(session)), r.logger, opts...)

	r.containers[session] = r.lru.PushFront(&registryEntry{session: session, c: c, lastUsed: now})
	for r.lru.Len() > r.maxSessions {
		r.removeLocked(r.lru.Back())
	}

	r.logger.DebugContext(ctx, "container created", slog.String("session_id", session))
	return c
}

// Len returns the number of live containers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lru.Len()
}

func (r *Registry) evictIdleLocked(now time.Time) {
	for el := r.lru.Back(); el != nil; el = r.lru.Back() {
		if now.Sub(el.Value.(*registryEntry).lastUsed) < r.idleTTL {
			return
		}
		r.removeLocked(el)
	}
}

func (r *Registry) removeLocked(el *list.Element) {
	e := r.lru.Remove(el).(*registryEntry)
	delete(r.containers, e.session)
	r.logger.Debug("container evicted", slog.String("session_id", e.session))
}

// lookup returns the live container for session without touching its
// position in the eviction order.
func (r *Registry) lookup(session string) *Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.containers[session]; ok {
		return el.Value.(*registryEntry).c
	}
	return nil
}

// Watch reloads live containers when another writer changes their keys,
// skipping the containers' own writes. It blocks until ctx is cancelled or
// the change feed ends.
func (r *Registry) Watch(ctx context.Context) error {
	changes, err := r.store.Subscribe(ctx)
	if err != nil {
		return err
	}
	for change := range changes {
		session, key, ok := splitSessionKey(change.Key)
		if !ok {
			continue
		}
		c := r.lookup(session)
		if c == nil {
			continue
		}
		change.Key = key
		c.apply(ctx, change)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errWatchEnded
}

// splitSessionKey splits "session:<id>:<key>" into its session and key.
func splitSessionKey(full string) (session, key string, ok bool) {
	rest, ok := strings.CutPrefix(full, sessionKeyPrefix)
	if !ok {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
