package api

import (
	"context"
	"fmt"
	"net/url"
)

// Checkout converts the server cart into a pending order in a single
// request. The backend rejects an empty cart with a validation error.
func (c *Client) Checkout(ctx context.Context) (OrderData, error) {
	var o OrderData
	if err := c.post(ctx, "/orders/checkout/", struct{}{}, &o); err != nil {
		return OrderData{}, err
	}
	return o, nil
}

// Orders fetches one page of the caller's order history (all orders for an
// admin credential).
func (c *Client) Orders(ctx context.Context, page int) (Page[OrderData], error) {
	v := url.Values{}
	v.Set("page", fmt.Sprintf("%d", page))
	var res Page[OrderData]
	if err := c.get(ctx, "/orders/", v, &res); err != nil {
		return Page[OrderData]{}, err
	}
	return res, nil
}

// Order fetches a single order by id.
func (c *Client) Order(ctx context.Context, id string) (OrderData, error) {
	var o OrderData
	if err := c.get(ctx, "/orders/"+id+"/", nil, &o); err != nil {
		return OrderData{}, err
	}
	return o, nil
}

// UpdateOrderStatus patches the order status. Authority over which
// transitions are legal lives in the backend; this call only reflects the
// result.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (OrderData, error) {
	body := map[string]string{"status": status}
	var o OrderData
	if err := c.patch(ctx, "/orders/"+id+"/", body, &o); err != nil {
		return OrderData{}, err
	}
	return o, nil
}
