package routes

import (
	"github.com/dukerupert/billsync/internal/router"
)

// RegisterWebhookRoutes registers the processor webhook endpoint.
//
// Webhook routes have no authentication middleware and no body limit
// middleware: the handler reads the raw body under its own limit and
// verifies the Stripe signature before parsing anything.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhook", deps.StripeHandler)
}
