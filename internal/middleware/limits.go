package middleware

import (
	"net/http"

	"github.com/dukerupert/billsync/internal/domain"
	"github.com/dukerupert/billsync/internal/handler"
)

// Common size limits
const (
	KB = 1024
	MB = 1024 * KB

	// FormMaxBodySize bounds checkout form and JSON submissions
	FormMaxBodySize = 64 * KB
)

// MaxBodySize limits the size of request bodies. Declared lengths over the
// limit are rejected up front; chunked bodies are cut off by MaxBytesReader
// when the handler reads past it.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				handler.JSONErrorResponse(w, r, domain.Errorf(domain.ETOOLARGE, "", "Request body too large"))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
