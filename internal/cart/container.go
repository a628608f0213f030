// Package cart holds the per-client cart and wishlist state container.
//
// A Container keeps both collections in memory and writes the full
// collection back to its kvstore.Store after every mutation. Nothing in the
// container returns an error to the caller: unreadable stored state loads as
// empty and failed writes are logged, leaving the in-memory state
// authoritative for the life of the process.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Sandanitin/AJ-Mana-Style/internal/domain"
	"github.com/Sandanitin/AJ-Mana-Style/internal/kvstore"
)

// Store keys for the two collections.
const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
)

// Snapshot is a copy of both collections taken right after a mutation.
type Snapshot struct {
	Session  string
	Op       string
	Cart     domain.Cart
	Wishlist domain.Wishlist
}

// Observer is notified after every mutation. Observers run on the mutating
// goroutine after the container lock is released.
type Observer func(ctx context.Context, s Snapshot)

// Option configures a Container.
type Option func(*Container)

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(c *Container) { c.observers = append(c.observers, o) }
}

// WithSession tags logs and snapshots with a session id.
func WithSession(id string) Option {
	return func(c *Container) { c.session = id }
}

// Container owns one client's cart and wishlist.
type Container struct {
	store   kvstore.Store
	logger  *slog.Logger
	session string
	origin  string // tags writes so Watch can skip their echoes

	mu        sync.Mutex
	cart      domain.Cart
	wishlist  domain.Wishlist
	observers []Observer

	// unsynced holds keys whose last write failed. The store is older than
	// memory there and must not be reloaded over it.
	unsynced map[string]bool
}

// New creates a container hydrated from store.
func New(ctx context.Context, store kvstore.Store, logger *slog.Logger, opts ...Option) *Container {
	c := &Container{
		store:    store,
		logger:   logger,
		origin:   uuid.NewString(),
		unsynced: make(map[string]bool, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session != "" {
		c.logger = c.logger.With(slog.String("session_id", c.session))
	}

	c.cart, c.wishlist, _ = c.load(ctx)
	return c
}

// Session returns the session id the container was created for.
func (c *Container) Session() string { return c.session }

// Subscribe registers an observer.
func (c *Container) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// CartItems returns a copy of the cart in display order.
func (c *Container) CartItems() domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Clone()
}

// WishlistItems returns a copy of the wishlist.
func (c *Container) WishlistItems() domain.Wishlist {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wishlist.Clone()
}

// CartTotal is the sum of unit price times quantity over all lines.
func (c *Container) CartTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Total()
}

// CartCount is the sum of quantities, not the number of lines.
func (c *Container) CartCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Count()
}

// IsInWishlist reports whether productID is saved in the wishlist.
func (c *Container) IsInWishlist(productID domain.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wishlist.Contains(productID)
}

// AddToCart increments the line for product by quantity, appending a new
// line when the product is not yet in the cart. Quantity is taken as given.
func (c *Container) AddToCart(ctx context.Context, product domain.Product, quantity int) {
	c.mu.Lock()
	c.addLocked(product, quantity)
	snap := c.commitLocked(ctx, "add_to_cart", CartKey)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "added to cart",
		slog.String("product_id", product.ID.String()),
		slog.Int("quantity", quantity),
	)
	c.notify(ctx, snap)
}

// RemoveFromCart drops the line for productID. Missing lines are ignored.
func (c *Container) RemoveFromCart(ctx context.Context, productID domain.ID) {
	c.mu.Lock()
	c.removeLocked(productID)
	snap := c.commitLocked(ctx, "remove_from_cart", CartKey)
	c.mu.Unlock()

	c.notify(ctx, snap)
}

// UpdateQuantity sets the quantity of the line for productID. A quantity of
// zero or less removes the line.
func (c *Container) UpdateQuantity(ctx context.Context, productID domain.ID, quantity int) {
	if quantity <= 0 {
		c.RemoveFromCart(ctx, productID)
		return
	}

	c.mu.Lock()
	if i := c.cart.IndexOf(productID); i >= 0 {
		c.cart[i].Quantity = quantity
	}
	snap := c.commitLocked(ctx, "update_quantity", CartKey)
	c.mu.Unlock()

	c.notify(ctx, snap)
}

// ClearCart empties the cart.
func (c *Container) ClearCart(ctx context.Context) {
	c.mu.Lock()
	c.cart = domain.Cart{}
	snap := c.commitLocked(ctx, "clear_cart", CartKey)
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "cart cleared")
	c.notify(ctx, snap)
}

// AddToWishlist saves product. Saving a product twice is a no-op.
func (c *Container) AddToWishlist(ctx context.Context, product domain.Product) {
	c.mu.Lock()
	if !c.wishlist.Contains(product.ID) {
		c.wishlist = append(c.wishlist, domain.WishlistItem{Product: product})
	}
	snap := c.commitLocked(ctx, "add_to_wishlist", WishlistKey)
	c.mu.Unlock()

	c.notify(ctx, snap)
}

// RemoveFromWishlist drops productID from the wishlist if present.
func (c *Container) RemoveFromWishlist(ctx context.Context, productID domain.ID) {
	c.mu.Lock()
	c.unsaveLocked(productID)
	snap := c.commitLocked(ctx, "remove_from_wishlist", WishlistKey)
	c.mu.Unlock()

	c.notify(ctx, snap)
}

// MoveToCart adds one unit of a saved product to the cart and removes it
// from the wishlist. Both collections are written in a single store
// transaction. Unknown ids are a no-op.
func (c *Container) MoveToCart(ctx context.Context, productID domain.ID) {
	c.mu.Lock()
	i := c.wishlist.IndexOf(productID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	product := c.wishlist[i].Product
	c.addLocked(product, 1)
	c.unsaveLocked(productID)
	snap := c.commitLocked(ctx, "move_to_cart", CartKey, WishlistKey)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "moved wishlist item to cart",
		slog.String("product_id", productID.String()),
	)
	c.notify(ctx, snap)
}

// Reload replaces the in-memory state with what the store currently holds.
// It reports whether anything changed; observers are notified only then.
// The lock is held across the read, so a concurrent mutation is applied
// either before the read or on top of the reloaded state. Unreadable stored
// state and unpersisted local changes leave memory untouched.
func (c *Container) Reload(ctx context.Context) bool {
	c.mu.Lock()
	if c.unsynced[CartKey] || c.unsynced[WishlistKey] {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "reload skipped, local changes not persisted")
		return false
	}
	cart, wishlist, ok := c.load(ctx)
	if !ok {
		c.mu.Unlock()
		return false
	}
	changed := !sameJSON(c.cart, cart) || !sameJSON(c.wishlist, wishlist)
	if changed {
		c.cart, c.wishlist = cart, wishlist
	}
	snap := c.snapshotLocked("reload")
	c.mu.Unlock()

	if changed {
		c.notify(ctx, snap)
	}
	return changed
}

// Watch reloads the container whenever another writer changes one of its
// keys. It blocks until ctx is cancelled or the change feed ends.
func (c *Container) Watch(ctx context.Context) error {
	changes, err := c.store.Subscribe(ctx)
	if err != nil {
		return err
	}
	for change := range changes {
		c.apply(ctx, change)
	}
	return ctx.Err()
}

// apply reloads for a change to one of the container's keys made by another
// writer. Echoes of the container's own writes are ignored.
func (c *Container) apply(ctx context.Context, change kvstore.Change) {
	if change.Key != CartKey && change.Key != WishlistKey {
		return
	}
	if change.Origin == c.origin {
		return
	}
	if c.Reload(ctx) {
		c.logger.DebugContext(ctx, "container reloaded after external change",
			slog.String("key", change.Key),
		)
	}
}

func (c *Container) addLocked(product domain.Product, quantity int) {
	if i := c.cart.IndexOf(product.ID); i >= 0 {
		c.cart[i].Quantity += quantity
		return
	}
	c.cart = append(c.cart, domain.CartLineItem{Product: product, Quantity: quantity})
}

func (c *Container) removeLocked(productID domain.ID) {
	if i := c.cart.IndexOf(productID); i >= 0 {
		c.cart = append(c.cart[:i:i], c.cart[i+1:]...)
	}
}

func (c *Container) unsaveLocked(productID domain.ID) {
	if i := c.wishlist.IndexOf(productID); i >= 0 {
		c.wishlist = append(c.wishlist[:i:i], c.wishlist[i+1:]...)
	}
}

// commitLocked writes the named collections through to the store and returns
// a snapshot for observers. Write failures are logged, never returned.
func (c *Container) commitLocked(ctx context.Context, op string, keys ...string) Snapshot {
	containerMutations.WithLabelValues(op).Inc()

	entries := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var v any = c.cart
		if key == WishlistKey {
			v = c.wishlist
		}
		data, err := json.Marshal(v)
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to encode collection",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		entries[key] = data
	}

	ctx = kvstore.WithOrigin(ctx, c.origin)
	var err error
	switch len(entries) {
	case 0:
	case 1:
		for k, v := range entries {
			err = c.store.Set(ctx, k, v)
		}
	default:
		err = c.store.SetMany(ctx, entries)
	}
	for _, key := range keys {
		_, encoded := entries[key]
		c.unsynced[key] = err != nil || !encoded
	}
	if err != nil {
		containerPersistFailures.Inc()
		c.logger.ErrorContext(ctx, "failed to persist collection",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}

	return c.snapshotLocked(op)
}

func (c *Container) snapshotLocked(op string) Snapshot {
	return Snapshot{
		Session:  c.session,
		Op:       op,
		Cart:     c.cart.Clone(),
		Wishlist: c.wishlist.Clone(),
	}
}

func (c *Container) notify(ctx context.Context, snap Snapshot) {
	c.mu.Lock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, o := range observers {
		o(ctx, snap)
	}
}

// load reads both collections, falling back to empty on any failure. ok is
// false when either key was unreadable; a missing key is not a failure.
func (c *Container) load(ctx context.Context) (domain.Cart, domain.Wishlist, bool) {
	var cart domain.Cart
	var wishlist domain.Wishlist
	cartOK := c.hydrate(ctx, CartKey, &cart)
	wishlistOK := c.hydrate(ctx, WishlistKey, &wishlist)
	return cart.Clone(), wishlist.Clone(), cartOK && wishlistOK
}

func (c *Container) hydrate(ctx context.Context, key string, dst any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if kvstore.IsNotFound(err) {
			return true
		}
		hydrationFailures.WithLabelValues(key).Inc()
		c.logger.WarnContext(ctx, "failed to read stored collection, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		hydrationFailures.WithLabelValues(key).Inc()
		c.logger.WarnContext(ctx, "stored collection is not valid JSON, starting empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		resetEmpty(dst)
		return false
	}
	return true
}

func resetEmpty(dst any) {
	switch v := dst.(type) {
	case *domain.Cart:
		*v = nil
	case *domain.Wishlist:
		*v = nil
	}
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}
