package domain

// WishlistItem is a saved product with no quantity.
type WishlistItem struct {
	Product
}

// Wishlist is a list of saved products with unique ids.
type Wishlist []WishlistItem

// IndexOf returns the index of the item with the given product id, or -1.
func (w Wishlist) IndexOf(id ID) int {
	for i := range w {
		if w[i].ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether the wishlist holds the given product id.
func (w Wishlist) Contains(id ID) bool {
	return w.IndexOf(id) >= 0
}

// Clone returns a copy safe to hand to callers.
func (w Wishlist) Clone() Wishlist {
	if w == nil {
		return Wishlist{}
	}
	out := make(Wishlist, len(w))
	copy(out, w)
	return out
}
