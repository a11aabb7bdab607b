package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront/internal/gateway/httpx/middlewares"
)

// NewRouter mounts the storefront routes.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.Trace)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Get("/categories", handler.ListCategories)
		r.Get("/{id}", handler.GetProduct)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Post("/", handler.AddCartItem)
		r.Delete("/", handler.ClearCart)
		r.Patch("/{productID}", handler.UpdateCartItem)
		r.Delete("/{productID}", handler.RemoveCartItem)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/checkout", handler.Checkout)
		r.Get("/", handler.ListOrders)
		r.Get("/{id}", handler.GetOrder)
		r.Post("/{id}/cancel", handler.CancelOrder)
		r.Patch("/{id}", handler.UpdateOrderStatus)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler.Login)
		r.Post("/register", handler.Register)
		r.Get("/me", handler.Me)
		r.Post("/logout", handler.Logout)
	})

	return r
}
