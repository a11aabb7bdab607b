package cart

import (
	"context"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/catalog"
)

type serverStore struct {
	client *api.Client
}

// NewServerStore wraps the REST client as a cart Store. All calls require
// an installed credential; without one the backend answers with an
// authorization error.
func NewServerStore(client *api.Client) Store {
	return &serverStore{client: client}
}

func (s *serverStore) Items(ctx context.Context) ([]Item, error) {
	summary, err := s.client.CartSummary(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(summary.Items))
	for i, data := range summary.Items {
		items[i] = itemFromData(data)
	}
	return items, nil
}

func (s *serverStore) Add(ctx context.Context, product catalog.Product, quantity int) error {
	_, err := s.client.AddToCart(ctx, product.ID, quantity)
	return err
}

func (s *serverStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	id, err := s.lineID(ctx, productID)
	if err != nil {
		return err
	}
	_, err = s.client.UpdateCartItem(ctx, id, quantity)
	return err
}

func (s *serverStore) Remove(ctx context.Context, productID string) error {
	id, err := s.lineID(ctx, productID)
	if err != nil {
		if api.KindOf(err) == api.KindNotFound {
			// Removing an absent line is a no-op, as in the guest store.
			return nil
		}
		return err
	}
	return s.client.RemoveCartItem(ctx, id)
}

func (s *serverStore) Clear(ctx context.Context) error {
	return s.client.ClearCart(ctx)
}

// lineID resolves a product id to the server-assigned cart line id.
func (s *serverStore) lineID(ctx context.Context, productID string) (string, error) {
	summary, err := s.client.CartSummary(ctx)
	if err != nil {
		return "", err
	}
	for _, item := range summary.Items {
		if item.Product == productID {
			return item.ID, nil
		}
	}
	return "", api.Errorf(api.KindNotFound, "cart: product %s not in cart", productID)
}

func itemFromData(data api.CartItemData) Item {
	image := ""
	if data.ProductDetail.Image != nil {
		image = *data.ProductDetail.Image
	}
	return Item{
		ID: data.ID,
		Product: catalog.Product{
			ID:           data.ProductDetail.ID,
			Name:         data.ProductDetail.Name,
			Description:  data.ProductDetail.Description,
			Price:        float64(data.ProductDetail.Price),
			CategoryID:   data.ProductDetail.Category,
			CategoryName: data.ProductDetail.CategoryName,
			ImageURL:     image,
		},
		Quantity: data.Quantity,
	}
}
