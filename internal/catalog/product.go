// Package catalog implements the catalog query component: it holds the
// current filter state, derives the backend query from it, and keeps the
// resulting page of products plus the category vocabulary.
package catalog

import (
	"fmt"
	"time"
)

// Product is the canonical catalog product. Immutable from the storefront's
// perspective; only the admin surface mutates it.
type Product struct {
	ID           string
	Name         string
	Description  string
	Price        float64
	CategoryID   string
	CategoryName string
	ImageURL     string
	CreatedAt    time.Time
}

// Category is one entry of the flat category vocabulary.
type Category struct {
	ID   string
	Name string
}

// FormatPrice renders a price with exactly two decimal places.
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
