package api

import (
	"context"
	"fmt"
	"net/url"
)

// ProductQuery carries the query parameters of the product list endpoint.
// Categories is repeatable; min/max price bounds are inclusive.
type ProductQuery struct {
	Page       int
	Ordering   string
	Categories []string
	MinPrice   float64
	MaxPrice   float64
	Search     string
}

// Values renders the query deterministically, so equal queries produce
// byte-equal URLs.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", fmt.Sprintf("%d", q.Page))
	if q.Ordering != "" {
		v.Set("ordering", q.Ordering)
	}
	for _, c := range q.Categories {
		v.Add("category", c)
	}
	v.Set("min_price", trimFloat(q.MinPrice))
	v.Set("max_price", trimFloat(q.MaxPrice))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func trimFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

// Products fetches one page of products matching the query.
func (c *Client) Products(ctx context.Context, q ProductQuery) (Page[ProductData], error) {
	var page Page[ProductData]
	if err := c.get(ctx, "/products/", q.Values(), &page); err != nil {
		return Page[ProductData]{}, err
	}
	return page, nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id string) (ProductData, error) {
	var p ProductData
	if err := c.get(ctx, "/products/"+id+"/", nil, &p); err != nil {
		return ProductData{}, err
	}
	return p, nil
}

// Categories fetches the full category vocabulary, following the paginated
// envelope until exhausted. The list is flat and small.
func (c *Client) Categories(ctx context.Context) ([]CategoryData, error) {
	var all []CategoryData
	for page := 1; ; page++ {
		v := url.Values{}
		v.Set("page", fmt.Sprintf("%d", page))
		var res Page[CategoryData]
		if err := c.get(ctx, "/products/categories/", v, &res); err != nil {
			return nil, err
		}
		all = append(all, res.Results...)
		if res.Next == nil || *res.Next == "" || len(res.Results) == 0 {
			return all, nil
		}
	}
}
