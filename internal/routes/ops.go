package routes

import (
	"net/http"

	"github.com/dukerupert/billsync/internal/router"
)

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/healthz", deps.Health)
	r.Handle(http.MethodGet, "/metrics", deps.Metrics)
}
