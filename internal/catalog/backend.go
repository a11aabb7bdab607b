package catalog

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront/internal/api"
)

// PageResult is one page of products plus the listing totals.
type PageResult struct {
	Products   []Product
	TotalCount int
	HasMore    bool
}

// Backend is the slice of the remote catalog this component needs.
type Backend interface {
	Products(ctx context.Context, f Filters) (PageResult, error)
	Product(ctx context.Context, id string) (Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

type apiBackend struct {
	client *api.Client
}

// NewAPIBackend adapts the REST client to the Backend port.
func NewAPIBackend(client *api.Client) Backend {
	return &apiBackend{client: client}
}

func (b *apiBackend) Products(ctx context.Context, f Filters) (PageResult, error) {
	page, err := b.client.Products(ctx, api.ProductQuery{
		Page:       f.Page,
		Ordering:   f.Sort.Ordering(),
		Categories: f.Categories,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		Search:     f.Search,
	})
	if err != nil {
		return PageResult{}, err
	}

	products := make([]Product, len(page.Results))
	for i, p := range page.Results {
		products[i] = productFromData(p)
	}
	return PageResult{
		Products:   products,
		TotalCount: page.Count,
		HasMore:    page.Next != nil && *page.Next != "",
	}, nil
}

func (b *apiBackend) Product(ctx context.Context, id string) (Product, error) {
	p, err := b.client.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	return productFromData(p), nil
}

func (b *apiBackend) Categories(ctx context.Context) ([]Category, error) {
	data, err := b.client.Categories(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]Category, len(data))
	for i, c := range data {
		categories[i] = Category{ID: c.ID, Name: c.Name}
	}
	return categories, nil
}

func productFromData(p api.ProductData) Product {
	image := ""
	if p.Image != nil {
		image = *p.Image
	}
	// A malformed timestamp degrades to the zero time; nothing downstream
	// branches on it.
	created, _ := time.Parse(time.RFC3339, p.CreatedAt)
	return Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        float64(p.Price),
		CategoryID:   p.Category,
		CategoryName: p.CategoryName,
		ImageURL:     image,
		CreatedAt:    created,
	}
}
