package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/session"
)

// fakeCartStore is a minimal in-memory cart.Store shared by the manager and
// the order backend, so checkout can clear it the way the real backend does.
type fakeCartStore struct {
	items []cart.Item
}

func (f *fakeCartStore) Items(ctx context.Context) ([]cart.Item, error) {
	return append([]cart.Item(nil), f.items...), nil
}

func (f *fakeCartStore) Add(ctx context.Context, p catalog.Product, qty int) error {
	for i := range f.items {
		if f.items[i].Product.ID == p.ID {
			f.items[i].Quantity += qty
			return nil
		}
	}
	f.items = append(f.items, cart.Item{ID: "line-" + p.ID, Product: p, Quantity: qty})
	return nil
}

func (f *fakeCartStore) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	for i := range f.items {
		if f.items[i].Product.ID == productID {
			f.items[i].Quantity = qty
			return nil
		}
	}
	return nil
}

func (f *fakeCartStore) Remove(ctx context.Context, productID string) error {
	for i := range f.items {
		if f.items[i].Product.ID == productID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCartStore) Clear(ctx context.Context) error {
	f.items = nil
	return nil
}

// fakeBackend implements Backend with injectable behaviour and call counts.
type fakeBackend struct {
	checkoutFn     func(ctx context.Context) (Order, error)
	updateStatusFn func(ctx context.Context, id string, status Status) (Order, error)
	ordersFn       func(ctx context.Context, page int) ([]Order, int, error)
	orderFn        func(ctx context.Context, id string) (Order, error)
	calls          int
}

func (f *fakeBackend) Checkout(ctx context.Context) (Order, error) {
	f.calls++
	return f.checkoutFn(ctx)
}

func (f *fakeBackend) Orders(ctx context.Context, page int) ([]Order, int, error) {
	f.calls++
	return f.ordersFn(ctx, page)
}

func (f *fakeBackend) Order(ctx context.Context, id string) (Order, error) {
	f.calls++
	return f.orderFn(ctx, id)
}

func (f *fakeBackend) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	f.calls++
	return f.updateStatusFn(ctx, id, status)
}

// authBackend satisfies session.Backend with a fixed user.
type authBackend struct {
	role string
}

func (a *authBackend) Login(ctx context.Context, email, password string) (api.TokenData, error) {
	return api.TokenData{Access: "tok"}, nil
}

func (a *authBackend) Register(ctx context.Context, username, email, password, password2 string) (api.UserData, error) {
	return api.UserData{}, nil
}

func (a *authBackend) Me(ctx context.Context) (api.UserData, error) {
	return api.UserData{ID: "u1", Username: "pat", Email: "pat@example.com", Role: a.role}, nil
}

type nopSink struct{}

func (nopSink) SetToken(string) {}

func signedInSession(t *testing.T, role string) *session.Manager {
	t.Helper()
	m := session.NewManager(&authBackend{role: role}, nopSink{}, nil)
	_, err := m.Login(context.Background(), "pat@example.com", "secret")
	require.NoError(t, err)
	return m
}

func testProduct(id string, price float64) catalog.Product {
	return catalog.Product{ID: id, Name: "product " + id, Price: price}
}

func pendingOrder(id string, items []cart.Item) Order {
	o := Order{
		ID:        id,
		UserID:    "u1",
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, it := range items {
		o.Items = append(o.Items, Item{
			ID:       "oi-" + it.Product.ID,
			Product:  it.Product,
			Price:    it.Product.Price,
			Quantity: it.Quantity,
		})
		o.TotalAmount += it.LineTotal()
	}
	return o
}

func TestCheckoutRejectsGuestBeforeNetwork(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)
	backend := &fakeBackend{}
	sess := session.NewManager(&authBackend{role: "CUSTOMER"}, nopSink{}, nil)
	svc := NewService(backend, cartMgr, sess)

	_, err := svc.Checkout(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Zero(t, backend.calls, "no request is made for a guest")
}

func TestCheckoutRejectsEmptyCartBeforeNetwork(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)
	backend := &fakeBackend{}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	_, err := svc.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, backend.calls, "no request is made for an empty cart")
}

func TestCheckoutSnapshotsCartAndClearsIt(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)
	ctx := context.Background()

	before, err := cartMgr.AddItem(ctx, testProduct("a", 10.00), 2)
	require.NoError(t, err)
	before, err = cartMgr.AddItem(ctx, testProduct("b", 5.00), 1)
	require.NoError(t, err)

	backend := &fakeBackend{
		checkoutFn: func(ctx context.Context) (Order, error) {
			// The backend clears the cart inside the checkout transaction.
			o := pendingOrder("ord-1", store.items)
			_ = store.Clear(ctx)
			return o, nil
		},
	}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	o, err := svc.Checkout(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.InDelta(t, before.Subtotal, o.TotalAmount, 1e-9)
	require.Len(t, o.Items, len(before.Items))
	for i, it := range o.Items {
		assert.Equal(t, before.Items[i].Product.ID, it.Product.ID)
		assert.Equal(t, before.Items[i].Quantity, it.Quantity)
		assert.InDelta(t, before.Items[i].Product.Price, it.Price, 1e-9)
	}

	// The mirror was refreshed after the backend cleared the cart.
	assert.Zero(t, cartMgr.Summary().ItemCount)

	cached, ok := svc.CachedOrder("ord-1")
	require.True(t, ok)
	assert.Equal(t, o.ID, cached.ID)
}

func TestCancelRefusedLocallyForKnownNonPendingOrder(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)

	backend := &fakeBackend{
		ordersFn: func(ctx context.Context, page int) ([]Order, int, error) {
			return []Order{{ID: "ord-1", Status: StatusShipped}}, 1, nil
		},
	}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	_, _, err := svc.Orders(context.Background(), 1)
	require.NoError(t, err)
	callsAfterList := backend.calls

	_, err = svc.Cancel(context.Background(), "ord-1")
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.Equal(t, callsAfterList, backend.calls, "a known non-pending order never reaches the backend")

	// The cached status is untouched by the refused cancel.
	cached, ok := svc.CachedOrder("ord-1")
	require.True(t, ok)
	assert.Equal(t, StatusShipped, cached.Status)
}

func TestCancelOfUnknownOrderPassesBackendRejectionThrough(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)

	backend := &fakeBackend{
		updateStatusFn: func(ctx context.Context, id string, status Status) (Order, error) {
			return Order{}, api.Errorf(api.KindValidation, "only pending orders can be cancelled")
		},
	}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	// Nothing cached for this id, so the backend has the last word.
	_, err := svc.Cancel(context.Background(), "ord-9")
	require.Error(t, err)
	assert.Equal(t, api.KindValidation, api.KindOf(err))
}

func TestCancelPendingOrder(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)

	backend := &fakeBackend{
		updateStatusFn: func(ctx context.Context, id string, status Status) (Order, error) {
			assert.Equal(t, StatusCancelled, status)
			return Order{ID: id, Status: StatusCancelled}, nil
		},
	}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	o, err := svc.Cancel(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)

	cached, ok := svc.CachedOrder("ord-1")
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, cached.Status)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)
	backend := &fakeBackend{}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	_, err := svc.UpdateStatus(context.Background(), "ord-1", StatusShipped)
	require.Error(t, err)
	assert.Equal(t, api.KindAuthorization, api.KindOf(err))
	assert.Zero(t, backend.calls)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)
	backend := &fakeBackend{}
	svc := NewService(backend, cartMgr, signedInSession(t, "ADMIN"))

	_, err := svc.UpdateStatus(context.Background(), "ord-1", Status("misplaced"))
	require.Error(t, err)
	assert.Equal(t, api.KindValidation, api.KindOf(err))
	assert.Zero(t, backend.calls)
}

func TestAdminStatusUpdateReflectsInBothCaches(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)

	backend := &fakeBackend{
		ordersFn: func(ctx context.Context, page int) ([]Order, int, error) {
			return []Order{
				{ID: "ord-1", Status: StatusShipped},
				{ID: "ord-2", Status: StatusPending},
			}, 2, nil
		},
		updateStatusFn: func(ctx context.Context, id string, status Status) (Order, error) {
			return Order{ID: id, Status: status}, nil
		},
	}
	svc := NewService(backend, cartMgr, signedInSession(t, "ADMIN"))

	_, total, err := svc.Orders(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	o, err := svc.UpdateStatus(context.Background(), "ord-1", StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)

	cached, ok := svc.CachedOrder("ord-1")
	require.True(t, ok)
	assert.Equal(t, StatusDelivered, cached.Status)

	list := svc.Cached()
	require.Len(t, list, 2)
	assert.Equal(t, StatusDelivered, list[0].Status)
	assert.Equal(t, StatusPending, list[1].Status)
}

func TestOrdersFailureReturnsCachedList(t *testing.T) {
	store := &fakeCartStore{}
	cartMgr := cart.NewManager(store, store, nil)

	fail := false
	backend := &fakeBackend{
		ordersFn: func(ctx context.Context, page int) ([]Order, int, error) {
			if fail {
				return nil, 0, api.Errorf(api.KindNetwork, "backend down")
			}
			return []Order{{ID: "ord-1", Status: StatusPending}}, 1, nil
		},
	}
	svc := NewService(backend, cartMgr, signedInSession(t, "CUSTOMER"))

	_, _, err := svc.Orders(context.Background(), 1)
	require.NoError(t, err)

	fail = true
	orders, total, err := svc.Orders(context.Background(), 2)
	require.Error(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ord-1", orders[0].ID)
	assert.Equal(t, 1, total)
}
