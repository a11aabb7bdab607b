package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/storefront/internal/cart/mergelog"
	"github.com/jcmexdev/storefront/internal/catalog"
)

// State tags which backing store is active.
type State int

const (
	// StateGuest: the cart lives in local persistent storage only.
	StateGuest State = iota
	// StateAuthenticated: the cart lives server-side and is mirrored here.
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "guest"
}

// Manager is the single cart the rest of the application sees. It owns the
// active backing store, the last known-good item list, and the transitions
// between guest and authenticated state.
//
// Mutations never touch the mirrored state optimistically: the store is
// mutated first, then re-read; a failure leaves the last known-good items
// visible. Rapid repeated mutations on the same product id are coalesced
// through singleflight so duplicate in-flight submissions collapse into one
// request; the backend has no idempotency key to do this for us.
type Manager struct {
	guest  Store
	server Store
	log    mergelog.Repository

	sf singleflight.Group

	mu    sync.Mutex
	state State
	items []Item
}

// NewManager creates a Manager in guest state. log may be nil.
func NewManager(guest, server Store, log mergelog.Repository) *Manager {
	return &Manager{guest: guest, server: server, log: log}
}

// State returns the active backing store tag.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) activeStore() Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticated {
		return m.server
	}
	return m.guest
}

// Summary derives item count and subtotal from the last known-good items.
func (m *Manager) Summary() Summary {
	m.mu.Lock()
	items := append([]Item(nil), m.items...)
	m.mu.Unlock()
	return Summarize(items)
}

// Refresh re-reads the active store and replaces the mirrored items.
func (m *Manager) Refresh(ctx context.Context) (Summary, error) {
	items, err := m.activeStore().Items(ctx)
	if err != nil {
		return m.Summary(), err
	}
	m.setItems(items)
	return Summarize(items), nil
}

func (m *Manager) setItems(items []Item) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

// mutate runs op against the active store under a per-key singleflight
// gate, then refreshes the mirror. The mirror is only replaced after both
// the mutation and the re-read succeed.
func (m *Manager) mutate(ctx context.Context, key string, op func(Store) error) (Summary, error) {
	v, err, _ := m.sf.Do(key, func() (any, error) {
		store := m.activeStore()
		if err := op(store); err != nil {
			return nil, err
		}
		items, err := store.Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("cart: refresh after mutation: %w", err)
		}
		m.setItems(items)
		return Summarize(items), nil
	})
	if err != nil {
		return m.Summary(), err
	}
	return v.(Summary), nil
}

// AddItem raises the quantity of an existing line by quantity, or creates
// the line. Quantity below 1 is treated as 1.
func (m *Manager) AddItem(ctx context.Context, product catalog.Product, quantity int) (Summary, error) {
	if quantity < 1 {
		quantity = 1
	}
	return m.mutate(ctx, "add:"+product.ID, func(s Store) error {
		return s.Add(ctx, product, quantity)
	})
}

// RemoveItem deletes the line for productID.
func (m *Manager) RemoveItem(ctx context.Context, productID string) (Summary, error) {
	return m.mutate(ctx, "rm:"+productID, func(s Store) error {
		return s.Remove(ctx, productID)
	})
}

// UpdateQuantity sets the absolute quantity of the line for productID.
// A quantity of zero or less removes the line.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) (Summary, error) {
	if quantity <= 0 {
		return m.RemoveItem(ctx, productID)
	}
	return m.mutate(ctx, "qty:"+productID, func(s Store) error {
		return s.UpdateQuantity(ctx, productID, quantity)
	})
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) (Summary, error) {
	return m.mutate(ctx, "clear", func(s Store) error {
		return s.Clear(ctx)
	})
}

// Login transitions Guest -> Authenticated and merges the persisted guest
// cart into the server cart: for each guest line, an existing server line
// is bumped by the guest quantity, otherwise a new line is created. The
// merge is per-item and not atomic; failures are collected in the report
// and the failed lines stay in local storage. The authoritative server
// cart is re-fetched afterward and any quantity mismatch is reported.
func (m *Manager) Login(ctx context.Context) (*MergeReport, error) {
	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.mu.Unlock()
		return &MergeReport{}, nil
	}
	m.state = StateAuthenticated
	m.mu.Unlock()

	guestItems, err := m.guest.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart: read guest cart for merge: %w", err)
	}

	if len(guestItems) == 0 {
		if _, err := m.Refresh(ctx); err != nil {
			return nil, err
		}
		return &MergeReport{}, nil
	}

	serverItems, err := m.server.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart: read server cart for merge: %w", err)
	}
	serverQty := make(map[string]int, len(serverItems))
	for _, it := range serverItems {
		serverQty[it.Product.ID] = it.Quantity
	}

	expected := make(map[string]int, len(guestItems))
	steps := make([]step, 0, len(guestItems))
	for _, it := range guestItems {
		if existing, ok := serverQty[it.Product.ID]; ok {
			expected[it.Product.ID] = existing + it.Quantity
			steps = append(steps, &bumpQuantityStep{store: m.server, productID: it.Product.ID, total: existing + it.Quantity})
		} else {
			expected[it.Product.ID] = it.Quantity
			steps = append(steps, &createLineStep{store: m.server, product: it.Product, quantity: it.Quantity})
		}
	}

	runner := newMergeRunner(steps, m.log, m.guest)
	report := runner.run(ctx, marshalMergePayload(guestItems))

	slog.InfoContext(ctx, "guest cart merged",
		"merge_id", report.MergeID,
		"merged", len(report.Merged),
		"failed", len(report.Failed),
	)

	// Re-fetch the authoritative cart and report lines whose quantity does
	// not match the expected sum.
	summary, err := m.Refresh(ctx)
	if err != nil {
		return report, err
	}
	actual := make(map[string]int, len(summary.Items))
	for _, it := range summary.Items {
		actual[it.Product.ID] = it.Quantity
	}
	for _, productID := range report.Merged {
		if actual[productID] != expected[productID] {
			report.Mismatches = append(report.Mismatches, productID)
		}
	}
	return report, nil
}

// Logout transitions Authenticated -> Guest. The mirrored server items are
// discarded client-side; the server cart itself stays untouched and becomes
// inaccessible until the next login.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state = StateGuest
	m.items = nil
	m.mu.Unlock()

	if _, err := m.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "guest cart reload after logout failed", "error", err)
	}
}
