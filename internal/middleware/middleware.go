// Package middleware provides HTTP middleware shared by every route: request
// ids, request-scoped loggers, Prometheus instrumentation, rate and body
// limits, and security headers.
package middleware

type contextKey string
