// Package api is the typed client for the remote storefront REST backend.
//
// The backend emits inconsistent shapes (decimals sometimes as JSON numbers,
// sometimes as strings). This package is the one place those shapes are
// normalised; everything above it works with canonical Go values and never
// inspects wire types again.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Page is the uniform pagination envelope used by every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Decimal decodes a monetary amount that may arrive as a JSON number or as
// a quoted string ("19.99"). It marshals back as a plain number.
type Decimal float64

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("api: decode decimal string: %w", err)
		}
		if s == "" {
			*d = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("api: parse decimal %q: %w", s, err)
		}
		*d = Decimal(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("api: decode decimal: %w", err)
	}
	*d = Decimal(v)
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(d))
}

// ProductData is the wire shape of a catalog product.
type ProductData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        Decimal `json:"price"`
	Category     string  `json:"category"`
	CategoryName string  `json:"category_name"`
	Image        *string `json:"image"`
	CreatedAt    string  `json:"created_at"`
}

// CategoryData is the wire shape of a product category.
type CategoryData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CartItemData is the wire shape of a server-side cart line.
type CartItemData struct {
	ID            string      `json:"id"`
	Product       string      `json:"product"`
	ProductDetail ProductData `json:"product_detail"`
	Quantity      int         `json:"quantity"`
	TotalPrice    Decimal     `json:"total_price"`
}

// CartSummaryData is the wire shape of GET /cart/summary/.
type CartSummaryData struct {
	Items []CartItemData `json:"items"`
	Total Decimal        `json:"total"`
	Count int            `json:"count"`
}

// OrderItemData is the wire shape of an order line: a snapshot decoupled
// from live product pricing.
type OrderItemData struct {
	ID            string      `json:"id"`
	Product       string      `json:"product"`
	ProductDetail ProductData `json:"product_detail"`
	Quantity      int         `json:"quantity"`
	Price         Decimal     `json:"price"`
	TotalPrice    Decimal     `json:"total_price"`
}

// OrderData is the wire shape of an order.
type OrderData struct {
	ID          string          `json:"id"`
	User        string          `json:"user"`
	Status      string          `json:"status"`
	TotalAmount Decimal         `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// UserData is the wire shape of GET /auth/me/.
type UserData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// TokenData is the wire shape of POST /auth/login/.
type TokenData struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
