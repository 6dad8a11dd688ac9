package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full API surface.
func NewRouter(cartHandler *CartHandler, checkoutHandler *CheckoutHandler, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(VisitorIDMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Post("/shipping", checkoutHandler.SubmitShipping)
				r.Post("/method", checkoutHandler.SelectMethod)
				r.Post("/payment", checkoutHandler.SubmitPayment)
				r.Post("/dismiss", checkoutHandler.DismissFeedback)
				r.Post("/back", checkoutHandler.Back)
				r.Delete("/", checkoutHandler.Abandon)
			})
		})
	})

	return r
}
