package httpx

import (
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/order"
	"github.com/jcmexdev/storefront/internal/session"
)

type ProductResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	PriceDisplay string  `json:"price_display"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	ImageURL     string  `json:"image_url,omitempty"`
}

type ProductPageResponse struct {
	Items      []ProductResponse `json:"items"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	HasMore    bool              `json:"has_more"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CartItemResponse struct {
	ID        string          `json:"id"`
	Product   ProductResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal float64         `json:"line_total"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  float64            `json:"subtotal"`
	State     string             `json:"state"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type OrderItemResponse struct {
	ID        string          `json:"id"`
	Product   ProductResponse `json:"product"`
	Price     float64         `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal float64         `json:"line_total"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount float64             `json:"total_amount"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	TotalCount int             `json:"total_count"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type SessionResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type MergeReportResponse struct {
	MergeID    string   `json:"merge_id,omitempty"`
	Merged     []string `json:"merged,omitempty"`
	Failed     []string `json:"failed,omitempty"`
	Mismatches []string `json:"mismatches,omitempty"`
}

type LoginResponse struct {
	Session SessionResponse      `json:"session"`
	Merge   *MergeReportResponse `json:"cart_merge,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Retry   bool   `json:"retryable,omitempty"`
}

func mapProduct(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		PriceDisplay: catalog.FormatPrice(p.Price),
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		ImageURL:     p.ImageURL,
	}
}

func mapProducts(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p)
	}
	return out
}

func mapCart(s cart.Summary, state cart.State) CartResponse {
	items := make([]CartItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = CartItemResponse{
			ID:        it.ID,
			Product:   mapProduct(it.Product),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		}
	}
	return CartResponse{
		Items:     items,
		ItemCount: s.ItemCount,
		Subtotal:  s.Subtotal,
		State:     state.String(),
	}
}

func mapOrder(o order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:        it.ID,
			Product:   mapProduct(it.Product),
			Price:     it.Price,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		}
	}
	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      string(o.Status),
		Items:       items,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   o.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapSession(s *session.Session) SessionResponse {
	return SessionResponse{
		UserID:   s.UserID,
		Username: s.Username,
		Email:    s.Email,
		Role:     string(s.Role),
	}
}

func mapMergeReport(r *cart.MergeReport) *MergeReportResponse {
	if r == nil {
		return nil
	}
	out := &MergeReportResponse{
		MergeID:    r.MergeID,
		Merged:     r.Merged,
		Mismatches: r.Mismatches,
	}
	for _, f := range r.Failed {
		out.Failed = append(out.Failed, f.ProductID)
	}
	return out
}
