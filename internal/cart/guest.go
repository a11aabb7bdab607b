package cart

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/localstore"
)

// guestIDPrefix marks locally synthesised line ids.
const guestIDPrefix = "local-"

type guestStore struct {
	store *localstore.Store
}

// NewGuestStore wraps the local persistence layer as a cart Store.
func NewGuestStore(store *localstore.Store) Store {
	return &guestStore{store: store}
}

func (g *guestStore) Items(ctx context.Context) ([]Item, error) {
	lines, err := g.store.CartLines(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = itemFromLine(line)
	}
	return items, nil
}

func (g *guestStore) Add(ctx context.Context, product catalog.Product, quantity int) error {
	lines, err := g.store.CartLines(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.ProductID == product.ID {
			line.Quantity += quantity
			return g.store.UpsertCartLine(ctx, line)
		}
	}
	return g.store.UpsertCartLine(ctx, lineFromProduct(product, quantity))
}

func (g *guestStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return g.Remove(ctx, productID)
	}
	lines, err := g.store.CartLines(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.ProductID == productID {
			line.Quantity = quantity
			return g.store.UpsertCartLine(ctx, line)
		}
	}
	return api.Errorf(api.KindNotFound, "cart: product %s not in cart", productID)
}

func (g *guestStore) Remove(ctx context.Context, productID string) error {
	return g.store.DeleteCartLine(ctx, productID)
}

func (g *guestStore) Clear(ctx context.Context) error {
	return g.store.ClearCart(ctx)
}

func itemFromLine(line localstore.CartLine) Item {
	return Item{
		ID: fmt.Sprintf("%s%s", guestIDPrefix, line.ProductID),
		Product: catalog.Product{
			ID:           line.ProductID,
			Name:         line.Name,
			Description:  line.Description,
			Price:        line.Price,
			CategoryID:   line.CategoryID,
			CategoryName: line.CategoryName,
			ImageURL:     line.ImageURL,
		},
		Quantity: line.Quantity,
	}
}

func lineFromProduct(p catalog.Product, quantity int) localstore.CartLine {
	return localstore.CartLine{
		ProductID:    p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		ImageURL:     p.ImageURL,
		Quantity:     quantity,
	}
}
