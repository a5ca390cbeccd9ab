package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API surface. Cart and order routes operate on the
// session identified by the session cookie.
func NewRouter(products ProductAPI, orderService OrderAPI, requestTimeout time.Duration) *chi.Mux {
	productHandler := NewProductHandler(products, requestTimeout)
	cartHandler := NewCartHandler(orderService, requestTimeout)
	orderHandler := NewOrderHandler(orderService, requestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
		})

		r.Route("/admin/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAdminProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Put("/{product_id}", productHandler.UpdateProduct)
			r.Delete("/{product_id}", productHandler.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/orders", orderHandler.CreateOrder)
	})

	return r
}
