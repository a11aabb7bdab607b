// Package cart presents a single cart regardless of whether the user is a
// guest or authenticated, and migrates between the two backing stores at
// authentication boundaries.
package cart

import (
	"context"

	"github.com/jcmexdev/storefront/internal/catalog"
)

// Item is one line of the cart: a product and a quantity. A quantity of
// zero never exists as a stored record; it means the line was removed.
type Item struct {
	// ID is server-assigned for an authenticated cart and synthesised as
	// "local-<productID>" for a guest cart.
	ID       string
	Product  catalog.Product
	Quantity int
}

// LineTotal is the derived price of the line.
func (i Item) LineTotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// Summary is the derived view of the whole cart. It is recomputed from the
// items on every read, never cached.
type Summary struct {
	Items     []Item
	ItemCount int
	Subtotal  float64
}

// Summarize derives the summary from a list of items.
func Summarize(items []Item) Summary {
	s := Summary{Items: items}
	for _, it := range items {
		s.ItemCount += it.Quantity
		s.Subtotal += it.LineTotal()
	}
	return s
}

// Store is one cart backing store. Both the local guest store and the
// remote server store satisfy the same contract; product id is the key in
// both (a product appears at most once per cart).
type Store interface {
	Items(ctx context.Context) ([]Item, error)
	Add(ctx context.Context, product catalog.Product, quantity int) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}
