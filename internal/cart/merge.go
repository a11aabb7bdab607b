package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jcmexdev/storefront/internal/cart/mergelog"
	"github.com/jcmexdev/storefront/internal/catalog"
)

// step is a single unit of work in a guest-to-server cart merge: one guest
// line pushed into the server cart.
type step interface {
	Name() string
	Execute(ctx context.Context) error
	// ProductID identifies the guest line this step carries, so the line
	// can be cleared from local storage once the step succeeds.
	ProductID() string
}

// createLineStep creates a new server line for a product the server cart
// does not yet hold.
type createLineStep struct {
	store    Store
	product  catalog.Product
	quantity int
}

func (s *createLineStep) Name() string      { return fmt.Sprintf("create:%s", s.product.ID) }
func (s *createLineStep) ProductID() string { return s.product.ID }

func (s *createLineStep) Execute(ctx context.Context) error {
	if err := s.store.Add(ctx, s.product, s.quantity); err != nil {
		return fmt.Errorf("create server line for %s: %w", s.product.ID, err)
	}
	return nil
}

// bumpQuantityStep raises an existing server line to the sum of the server
// and guest quantities.
type bumpQuantityStep struct {
	store     Store
	productID string
	total     int
}

func (s *bumpQuantityStep) Name() string      { return fmt.Sprintf("bump:%s", s.productID) }
func (s *bumpQuantityStep) ProductID() string { return s.productID }

func (s *bumpQuantityStep) Execute(ctx context.Context) error {
	if err := s.store.UpdateQuantity(ctx, s.productID, s.total); err != nil {
		return fmt.Errorf("bump server line for %s: %w", s.productID, err)
	}
	return nil
}

// MergeFailure records one guest line that could not be merged.
type MergeFailure struct {
	ProductID string
	Err       error
}

// MergeReport is the outcome of a guest-to-server merge. The merge is not
// atomic across items: Merged and Failed can both be non-empty.
type MergeReport struct {
	MergeID string
	// Merged lists product ids whose guest lines made it to the server.
	Merged []string
	// Failed lists guest lines left in local storage for a later attempt.
	Failed []MergeFailure
	// Mismatches lists product ids whose post-merge server quantity does
	// not match the expected sum (another client raced the merge, or the
	// re-fetch saw stale data).
	Mismatches []string
}

// Clean reports whether every line merged and the re-fetched server cart
// matched expectations.
func (r *MergeReport) Clean() bool {
	return len(r.Failed) == 0 && len(r.Mismatches) == 0
}

// mergeRunner executes merge steps sequentially, best-effort: a failed step
// is recorded and the remaining steps still run. There is nothing to roll
// back: a merged quantity is the desired end state regardless of what
// happens to its siblings.
type mergeRunner struct {
	mergeID string
	steps   []step
	log     mergelog.Repository // nil-safe: transitions are not persisted if nil
	guest   Store
}

func newMergeRunner(steps []step, log mergelog.Repository, guest Store) *mergeRunner {
	return &mergeRunner{
		mergeID: uuid.NewString(),
		steps:   steps,
		log:     log,
		guest:   guest,
	}
}

func (m *mergeRunner) record(ctx context.Context, status mergelog.Status, stepName, payload string, errs []string) {
	if m.log == nil {
		return
	}
	entry := mergelog.NewEntry(ctx, m.mergeID, status, stepName, payload, errs)
	if err := m.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "merge log write failed", "merge_id", m.mergeID, "error", err)
	}
}

// run executes the merge and clears each guest line as soon as its step
// succeeds, so an interruption never drops a line that is not yet on the
// server.
func (m *mergeRunner) run(ctx context.Context, payload string) *MergeReport {
	report := &MergeReport{MergeID: m.mergeID}

	m.record(ctx, mergelog.StatusStarted, "", payload, nil)

	var errMsgs []string
	for _, s := range m.steps {
		if err := s.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "merge step failed", "merge_id", m.mergeID, "step", s.Name(), "error", err)
			report.Failed = append(report.Failed, MergeFailure{ProductID: s.ProductID(), Err: err})
			errMsgs = append(errMsgs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		if err := m.guest.Remove(ctx, s.ProductID()); err != nil {
			slog.WarnContext(ctx, "merged line not cleared locally", "merge_id", m.mergeID, "product_id", s.ProductID(), "error", err)
		}
		report.Merged = append(report.Merged, s.ProductID())
		m.record(ctx, mergelog.StatusStepDone, s.Name(), "", nil)
	}

	switch {
	case len(report.Failed) == 0:
		m.record(ctx, mergelog.StatusComplete, "", "", nil)
	case len(report.Merged) == 0:
		m.record(ctx, mergelog.StatusFailed, "", "", errMsgs)
	default:
		m.record(ctx, mergelog.StatusPartial, "", "", errMsgs)
	}
	return report
}

func marshalMergePayload(items []Item) string {
	type line struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	lines := make([]line, len(items))
	for i, it := range items {
		lines[i] = line{ProductID: it.Product.ID, Quantity: it.Quantity}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "[]"
	}
	return string(b)
}
