package router

import (
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/dukerupert/billsync/internal/handler"
)

// Router wraps http.ServeMux with middleware chaining
type Router struct {
	mux     *http.ServeMux
	chain   []Middleware
	methods *methodTable
}

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// methodTable records the methods registered per path, shared by groups, so
// the fallback can tell a wrong method from an unknown path.
type methodTable struct {
	mu     sync.RWMutex
	byPath map[string][]string
}

func (t *methodTable) add(method, pattern string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !slices.Contains(t.byPath[pattern], method) {
		t.byPath[pattern] = append(t.byPath[pattern], method)
	}
}

func (t *methodTable) allowed(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.byPath[path])
}

// New creates a new Router with optional global middleware
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:     http.NewServeMux(),
		chain:   middleware,
		methods: &methodTable{byPath: map[string][]string{}},
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, handler, middleware...)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, handler, middleware...)
}

// Options registers an OPTIONS route
func (r *Router) Options(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodOptions, pattern, handler, middleware...)
}

// Handle registers a route with explicit method
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) {
	r.methods.add(method, pattern)
	r.mux.Handle(method+" "+pattern, r.wrap(handler, middleware))
}

// NotFound registers the fallback for unmatched requests. It runs the global
// chain so they are still logged and counted. A registered path requested
// with the wrong method gets 405 and an Allow header instead.
func (r *Router) NotFound(notFound http.HandlerFunc) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		allowed := r.methods.allowed(req.URL.Path)
		if len(allowed) == 0 {
			notFound(w, req)
			return
		}
		if slices.Contains(allowed, http.MethodGet) && !slices.Contains(allowed, http.MethodHead) {
			allowed = append(allowed, http.MethodHead)
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		handler.WriteJSON(w, http.StatusMethodNotAllowed, map[string]map[string]string{
			"error": {"code": "method_not_allowed", "message": "Method not allowed"},
		})
	})
	r.mux.Handle("/", r.wrap(fallback, nil))
}

// wrap applies middleware to a handler in reverse order
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	combined := append(slices.Clone(r.chain), middleware...)

	// Apply middleware in reverse order so they execute in the order defined
	slices.Reverse(combined)

	result := handler
	for _, m := range combined {
		result = m(result)
	}

	return result
}

// Group creates a sub-router with additional middleware
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:     r.mux,
		chain:   append(slices.Clone(r.chain), middleware...),
		methods: r.methods,
	}
}
