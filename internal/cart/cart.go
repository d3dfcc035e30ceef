// Package cart implements the per-session shopping cart: a mapping of product
// id to requested quantity, loaded from and saved to an injected Store keyed by
// session id.
package cart

import (
	"errors"
	"sort"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidProduct  = errors.New("product id is required")
)

// MaxLineQuantity caps a single entry so repeated adds cannot overflow.
const MaxLineQuantity = 10_000

// Cart is not safe for concurrent use; each request works on its own copy.
type Cart struct {
	items map[string]int
}

func New() *Cart {
	return &Cart{items: make(map[string]int)}
}

// FromSnapshot rebuilds a cart, dropping non-positive entries.
func FromSnapshot(s Snapshot) *Cart {
	c := New()
	for id, q := range s {
		if id != "" && q > 0 {
			c.items[id] = q
		}
	}
	return c
}

// Add merges quantity into the entry for productID.
func (c *Cart) Add(productID string, quantity int) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	next := c.items[productID] + quantity
	if next > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	c.items[productID] = next
	return nil
}

// Snapshot returns a copy of the current mapping.
func (c *Cart) Snapshot() Snapshot {
	out := make(Snapshot, len(c.items))
	for id, q := range c.items {
		out[id] = q
	}
	return out
}

func (c *Cart) Clear() {
	c.items = make(map[string]int)
}

// Len is the number of distinct products.
func (c *Cart) Len() int { return len(c.items) }

// Count is the total number of units.
func (c *Cart) Count() int {
	n := 0
	for _, q := range c.items {
		n += q
	}
	return n
}

// Snapshot is an immutable-by-convention view of a cart.
type Snapshot map[string]int

type Entry struct {
	ProductID string
	Quantity  int
}

func (s Snapshot) Empty() bool { return len(s) == 0 }

// Entries returns the entries ordered by product id.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s))
	for id, q := range s {
		out = append(out, Entry{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
