package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/order"
	"github.com/jcmexdev/storefront/internal/session"
)

// Handler exposes the storefront engine over HTTP. It is glue only: every
// decision lives in the component it delegates to.
type Handler struct {
	catalog *catalog.Catalog
	cart    *cart.Manager
	orders  *order.Service
	session *session.Manager
}

// NewHandler wires the handler to the four engine components.
func NewHandler(cat *catalog.Catalog, cartMgr *cart.Manager, orders *order.Service, sess *session.Manager) *Handler {
	return &Handler{catalog: cat, cart: cartMgr, orders: orders, session: sess}
}

// ── catalog ──────────────────────────────────────────────────────────────

// ListProducts applies the query's filter changes and returns the matching
// page.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	partial, err := partialFromQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}

	result, err := h.catalog.SetFilters(r.Context(), partial)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProductPageResponse{
		Items:      mapProducts(result.Products),
		TotalCount: result.TotalCount,
		Page:       h.catalog.Filters().Page,
		TotalPages: h.catalog.TotalPages(),
		HasMore:    result.HasMore,
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	out := make([]CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// ── cart ─────────────────────────────────────────────────────────────────

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cart.Refresh(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(summary, h.cart.State()))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	product, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	summary, err := h.cart.AddItem(r.Context(), product, req.Quantity)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCart(summary, h.cart.State()))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	productID := chi.URLParam(r, "productID")
	summary, err := h.cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(summary, h.cart.State()))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cart.RemoveItem(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(summary, h.cart.State()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.cart.Clear(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(summary, h.cart.State()))
}

// ── orders ───────────────────────────────────────────────────────────────

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Checkout(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(o))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			page = n
		}
	}

	orders, total, err := h.orders.Orders(r.Context(), page)
	if err != nil {
		writeFailure(w, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrder(o)
	}
	writeJSON(w, http.StatusOK, OrderListResponse{Orders: out, TotalCount: total})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// ── auth ─────────────────────────────────────────────────────────────────

// Login authenticates, then merges the guest cart into the server cart.
// The merge outcome rides along in the response so the UI can surface
// partially merged lines.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	sess, err := h.session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}

	report, err := h.cart.Login(r.Context())
	if err != nil {
		// The session is established; a merge failure must not undo it.
		slog.ErrorContext(r.Context(), "guest cart merge failed", "user_id", sess.UserID, "error", err)
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Session: mapSession(sess),
		Merge:   mapMergeReport(report),
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	sess, err := h.session.Register(r.Context(), req.Username, req.Email, req.Password, req.Password2)
	if err != nil {
		writeFailure(w, err)
		return
	}

	report, err := h.cart.Login(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "guest cart merge failed", "user_id", sess.UserID, "error", err)
	}

	writeJSON(w, http.StatusCreated, LoginResponse{
		Session: mapSession(sess),
		Merge:   mapMergeReport(report),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := h.session.Current()
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}
	writeJSON(w, http.StatusOK, mapSession(sess))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	h.cart.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ── helpers ──────────────────────────────────────────────────────────────

func partialFromQuery(r *http.Request) (catalog.Partial, error) {
	q := r.URL.Query()
	var p catalog.Partial

	if q.Has("category") {
		cats := q["category"]
		p.Categories = &cats
	}
	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, api.Errorf(api.KindValidation, "invalid min_price %q", raw)
		}
		p.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, api.Errorf(api.KindValidation, "invalid max_price %q", raw)
		}
		p.MaxPrice = &v
	}
	if raw := q.Get("sort"); raw != "" {
		sort := catalog.SortOption(raw)
		switch sort {
		case catalog.SortNameAsc, catalog.SortNameDesc, catalog.SortPriceAsc, catalog.SortPriceDesc:
			p.Sort = &sort
		default:
			return p, api.Errorf(api.KindValidation, "unknown sort %q", raw)
		}
	}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, api.Errorf(api.KindValidation, "invalid page %q", raw)
		}
		p.Page = &n
	}
	if q.Has("search") {
		search := strings.TrimSpace(q.Get("search"))
		p.Search = &search
	}
	return p, nil
}

// writeFailure maps the error taxonomy onto HTTP statuses. Retryable
// (network-class) failures are flagged so the UI renders its retry
// affordance.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "authentication_required", "sign in to continue")
		return
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "empty_cart", "your cart is empty")
		return
	case errors.Is(err, order.ErrNotCancellable):
		writeError(w, http.StatusBadRequest, "not_cancellable", "only pending orders can be cancelled")
		return
	}

	kind := api.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case api.KindValidation:
		status = http.StatusBadRequest
	case api.KindAuthorization:
		status = http.StatusUnauthorized
	case api.KindNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, ErrorResponse{
		Error:   kind.String(),
		Message: err.Error(),
		Retry:   api.IsRetryable(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
