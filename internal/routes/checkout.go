package routes

import (
	"net/http"

	"github.com/dukerupert/billsync/internal/router"
)

// RegisterCheckoutRoutes registers checkout creation, the processor return
// pages, the dashboard and the publishable config.
func RegisterCheckoutRoutes(r *router.Router, deps CheckoutDeps) {
	h := deps.Handler

	r.Post("/create-checkout-session", h.HandleCreateSession, deps.SubmitMiddleware...)
	// Preflight for checkout pages hosted on another origin; CORS answers it.
	r.Options("/create-checkout-session", func(http.ResponseWriter, *http.Request) {})

	r.Get("/payment/success", h.HandlePaymentSuccess)
	r.Get("/subscription/success", h.HandleSubscriptionSuccess)
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/config", h.HandleConfig)
}
