package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/renatobalun/langchain-error/internal/api/middleware"
	"github.com/renatobalun/langchain-error/internal/api/response"
	"github.com/renatobalun/langchain-error/internal/telemetry"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth    *mw.Auth
	Metrics *telemetry.Metrics

	StatusHandler       http.HandlerFunc
	WebhookHandler      http.HandlerFunc
	RecentErrorsHandler http.HandlerFunc
	LatestErrorHandler  http.HandlerFunc
	ErrorStatsHandler   http.HandlerFunc
	ClearErrorsHandler  http.HandlerFunc

	HealthHandler     http.HandlerFunc
	ListErrorsHandler http.HandlerFunc
	GetErrorHandler   http.HandlerFunc

	MetricsHandler http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if deps.Metrics != nil {
		r.Use(mw.Metrics(deps.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Receiver endpoints
	r.Get("/", orNotImplemented(deps.StatusHandler))
	r.Get("/errors", orNotImplemented(deps.RecentErrorsHandler))
	r.Get("/errors/latest", orNotImplemented(deps.LatestErrorHandler))
	r.Get("/errors/stats", orNotImplemented(deps.ErrorStatsHandler))
	r.Delete("/errors", orNotImplemented(deps.ClearErrorsHandler))

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
		}
		r.Post("/webhook/error", orNotImplemented(deps.WebhookHandler))
	})

	// Stored errors
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/errors", orNotImplemented(deps.ListErrorsHandler))
	r.Get("/api/v1/errors/{errorID}", orNotImplemented(deps.GetErrorHandler))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
