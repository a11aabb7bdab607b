// Package order models an order from cart snapshot through checkout to
// status progression: read-only for the customer, read/write for the admin.
package order

import (
	"errors"
	"time"

	"github.com/jcmexdev/storefront/internal/catalog"
)

// ErrEmptyCart rejects checkout before any network call is made.
var ErrEmptyCart = errors.New("order: cart is empty")

// ErrNotCancellable rejects a cancel for an order already known to be past
// pending.
var ErrNotCancellable = errors.New("order: only pending orders can be cancelled")

// Status is the order lifecycle vocabulary.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Item is one order line: a snapshot of the product and its price at the
// time of purchase, decoupled from live catalog pricing.
type Item struct {
	ID       string
	Product  catalog.Product
	Price    float64 // price at time of order, not the live price
	Quantity int
}

// LineTotal is quantity times price-at-purchase.
func (i Item) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is an immutable snapshot of a cart at checkout plus its status.
// Only the status ever changes after creation.
type Order struct {
	ID          string
	UserID      string
	Status      Status
	Items       []Item
	TotalAmount float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
