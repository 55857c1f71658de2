package routes

import (
	"net/http"

	"github.com/dukerupert/billsync/internal/handler/checkout"
	"github.com/dukerupert/billsync/internal/router"
)

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}

// CheckoutDeps contains dependencies for customer-facing checkout routes
type CheckoutDeps struct {
	Handler *checkout.Handler

	// SubmitMiddleware guards session creation (rate and body limits)
	SubmitMiddleware []router.Middleware
}

// OpsDeps contains dependencies for operational endpoints
type OpsDeps struct {
	Health  http.HandlerFunc
	Metrics http.Handler
}
