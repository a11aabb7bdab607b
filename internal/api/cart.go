package api

import "context"

// CartSummary fetches the authenticated user's cart with server-computed
// totals.
func (c *Client) CartSummary(ctx context.Context) (CartSummaryData, error) {
	var s CartSummaryData
	if err := c.get(ctx, "/cart/summary/", nil, &s); err != nil {
		return CartSummaryData{}, err
	}
	return s, nil
}

// AddToCart creates a cart line, or bumps the quantity when the product is
// already present (backend semantics).
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (CartItemData, error) {
	body := map[string]any{"product": productID, "quantity": quantity}
	var item CartItemData
	if err := c.post(ctx, "/cart/", body, &item); err != nil {
		return CartItemData{}, err
	}
	return item, nil
}

// UpdateCartItem sets the absolute quantity of an existing cart line.
// id is the server-assigned line id, not the product id.
func (c *Client) UpdateCartItem(ctx context.Context, id string, quantity int) (CartItemData, error) {
	body := map[string]any{"quantity": quantity}
	var item CartItemData
	if err := c.patch(ctx, "/cart/"+id+"/", body, &item); err != nil {
		return CartItemData{}, err
	}
	return item, nil
}

// RemoveCartItem deletes a cart line by its server-assigned id.
func (c *Client) RemoveCartItem(ctx context.Context, id string) error {
	return c.delete(ctx, "/cart/"+id+"/")
}

// ClearCart removes every line in the server cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.delete(ctx, "/cart/clear/")
}
