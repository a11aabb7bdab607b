package order

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/session"
)

// Service exposes the order lifecycle. It caches the last fetched order
// list and details with plain last-fetched-wins semantics, so a status
// update is visible in both list and detail views without a re-fetch.
type Service struct {
	backend Backend
	cart    *cart.Manager
	session *session.Manager

	mu     sync.Mutex
	orders []Order
	total  int
	byID   map[string]Order
}

// NewService wires the order lifecycle to the cart and session it depends on.
func NewService(backend Backend, cartMgr *cart.Manager, sessionMgr *session.Manager) *Service {
	return &Service{
		backend: backend,
		cart:    cartMgr,
		session: sessionMgr,
		byID:    make(map[string]Order),
	}
}

// Checkout converts the current cart into a pending order with a single
// request. An empty cart is rejected locally, before any network traffic,
// and a guest session fails with session.ErrNotAuthenticated so the caller
// can redirect to login and re-invoke checkout afterward.
func (s *Service) Checkout(ctx context.Context) (Order, error) {
	if s.session.Current() == nil {
		return Order{}, session.ErrNotAuthenticated
	}
	if s.cart.Summary().ItemCount == 0 {
		return Order{}, ErrEmptyCart
	}

	o, err := s.backend.Checkout(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("order: checkout: %w", err)
	}

	// The backend cleared the server cart inside the checkout transaction;
	// re-sync the mirror. A failed refresh is not a failed checkout.
	if _, err := s.cart.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "cart refresh after checkout failed", "order_id", o.ID, "error", err)
	}

	s.remember(o)
	slog.InfoContext(ctx, "order created", "order_id", o.ID, "total", o.TotalAmount)
	return o, nil
}

// Orders fetches one page of order history. Last fetched wins.
func (s *Service) Orders(ctx context.Context, page int) ([]Order, int, error) {
	if page < 1 {
		page = 1
	}
	orders, total, err := s.backend.Orders(ctx, page)
	if err != nil {
		return s.cached(), s.cachedTotal(), err
	}

	s.mu.Lock()
	s.orders = orders
	s.total = total
	for _, o := range orders {
		s.byID[o.ID] = o
	}
	s.mu.Unlock()
	return orders, total, nil
}

// Order fetches a single order by id.
func (s *Service) Order(ctx context.Context, id string) (Order, error) {
	o, err := s.backend.Order(ctx, id)
	if err != nil {
		return Order{}, err
	}
	s.remember(o)
	return o, nil
}

// Cancel requests cancellation. When the last seen status for the order is
// already past pending the request is refused locally with ErrNotCancellable;
// otherwise the backend decides, its rejection passes through unchanged, and
// the cached status stays as it was.
func (s *Service) Cancel(ctx context.Context, id string) (Order, error) {
	if known, ok := s.CachedOrder(id); ok && known.Status != StatusPending {
		return Order{}, ErrNotCancellable
	}

	o, err := s.backend.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return Order{}, fmt.Errorf("order: cancel %s: %w", id, err)
	}
	s.remember(o)
	return o, nil
}

// UpdateStatus is the admin transition. The client enforces no state
// machine beyond requiring a known status and the admin role; transition
// authority lives in the backend.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, api.Errorf(api.KindValidation, "order: unknown status %q", status)
	}
	if !s.session.Current().IsAdmin() {
		return Order{}, api.Errorf(api.KindAuthorization, "order: status update requires admin role")
	}

	o, err := s.backend.UpdateStatus(ctx, id, status)
	if err != nil {
		return Order{}, fmt.Errorf("order: update status of %s: %w", id, err)
	}
	s.remember(o)
	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", string(status))
	return o, nil
}

// Cached returns the last fetched list without touching the network, with
// any later-seen details folded in.
func (s *Service) Cached() []Order {
	return s.cached()
}

// CachedOrder returns the last seen detail for id.
func (s *Service) CachedOrder(id string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	return o, ok
}

// remember folds o into the list and detail caches so both views reflect
// the newest state.
func (s *Service) remember(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.ID] = o
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o
			return
		}
	}
}

func (s *Service) cached() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Order(nil), s.orders...)
}

func (s *Service) cachedTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}
