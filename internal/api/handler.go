package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/powerofaum/payments/internal/billing"
	"github.com/powerofaum/payments/internal/dedup"
	"github.com/powerofaum/payments/internal/reporting"
	"github.com/powerofaum/payments/internal/store"
)

const serviceName = "PowerOfAum Payments API"

// Handler handles HTTP requests for the API
type Handler struct {
	store      store.Store
	billing    *billing.Service
	aggregator *reporting.Aggregator
	dedup      *dedup.Manager // nil when Redis is not configured
	version    string
	buildTime  string
	gitCommit  string
	startTime  time.Time
}

// NewHandler creates a new API handler. The dedup manager may be nil; the
// ledger's session-id uniqueness keeps reconciliation idempotent without it.
func NewHandler(st store.Store, bs *billing.Service, agg *reporting.Aggregator, dd *dedup.Manager, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		store:      st,
		billing:    bs,
		aggregator: agg,
		dedup:      dd,
		version:    version,
		buildTime:  buildTime,
		gitCommit:  gitCommit,
		startTime:  time.Now(),
	}
}

// RegisterRoutes registers all API routes. sessionLimit throttles the two
// checkout-session endpoints; pass nil to disable.
func (h *Handler) RegisterRoutes(r *chi.Mux, sessionLimit func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		// Checkout session creation
		if sessionLimit != nil {
			r.With(sessionLimit).Post("/create-subscription-session", h.createSubscriptionSession)
			r.With(sessionLimit).Post("/create-addon-session", h.createAddonSession)
		} else {
			r.Post("/create-subscription-session", h.createSubscriptionSession)
			r.Post("/create-addon-session", h.createAddonSession)
		}

		// Webhook reconciliation
		r.Post("/webhook-stripe", h.stripeWebhook)
		r.Post("/addon-webhook", h.addonWebhook)

		// Vendor reporting
		r.Get("/vendor-sales-status", h.vendorSalesStatus)
		r.Get("/addon-purchase-status", h.addonPurchaseStatus)

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   serviceName,
		"version":   h.version,
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store": "ok",
	}

	statusCode := http.StatusOK

	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
