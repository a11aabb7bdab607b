package order

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/catalog"
)

// Backend is the slice of the remote order API this component needs.
type Backend interface {
	Checkout(ctx context.Context) (Order, error)
	Orders(ctx context.Context, page int) ([]Order, int, error)
	Order(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Order, error)
}

type apiBackend struct {
	client *api.Client
}

// NewAPIBackend adapts the REST client to the Backend port.
func NewAPIBackend(client *api.Client) Backend {
	return &apiBackend{client: client}
}

func (b *apiBackend) Checkout(ctx context.Context) (Order, error) {
	data, err := b.client.Checkout(ctx)
	if err != nil {
		return Order{}, err
	}
	return orderFromData(data), nil
}

func (b *apiBackend) Orders(ctx context.Context, page int) ([]Order, int, error) {
	res, err := b.client.Orders(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	orders := make([]Order, len(res.Results))
	for i, data := range res.Results {
		orders[i] = orderFromData(data)
	}
	return orders, res.Count, nil
}

func (b *apiBackend) Order(ctx context.Context, id string) (Order, error) {
	data, err := b.client.Order(ctx, id)
	if err != nil {
		return Order{}, err
	}
	return orderFromData(data), nil
}

func (b *apiBackend) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	data, err := b.client.UpdateOrderStatus(ctx, id, string(status))
	if err != nil {
		return Order{}, err
	}
	return orderFromData(data), nil
}

func orderFromData(data api.OrderData) Order {
	items := make([]Item, len(data.Items))
	for i, it := range data.Items {
		image := ""
		if it.ProductDetail.Image != nil {
			image = *it.ProductDetail.Image
		}
		items[i] = Item{
			ID: it.ID,
			Product: catalog.Product{
				ID:           it.ProductDetail.ID,
				Name:         it.ProductDetail.Name,
				Description:  it.ProductDetail.Description,
				Price:        float64(it.ProductDetail.Price),
				CategoryID:   it.ProductDetail.Category,
				CategoryName: it.ProductDetail.CategoryName,
				ImageURL:     image,
			},
			Price:    float64(it.Price),
			Quantity: it.Quantity,
		}
	}

	created, _ := time.Parse(time.RFC3339, data.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, data.UpdatedAt)
	return Order{
		ID:          data.ID,
		UserID:      data.User,
		Status:      Status(data.Status),
		Items:       items,
		TotalAmount: float64(data.TotalAmount),
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}
