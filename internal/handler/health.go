package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck is a named readiness probe.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// HealthHandler answers GET /healthz. With no checks it reports liveness;
// otherwise every check must pass within timeout or the response is 503.
func HealthHandler(logger *slog.Logger, timeout time.Duration, checks ...HealthCheck) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Error("readiness check failed", "check", c.Name, "error", err)
				status[c.Name] = "unavailable"
				healthy = false
				continue
			}
			status[c.Name] = "ok"
		}

		if !healthy {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "checks": status})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": status})
	}
}
