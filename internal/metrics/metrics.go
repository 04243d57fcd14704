package metrics

import (
	"net/http"
	"time"
)

// Metrics interface for dependency injection
type Metrics interface {
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordCheckoutSession(kind, status string)
	RecordWebhookEvent(eventType, outcome string)
	RecordPaymentFailure(reason string)
	SetDBConnectionsActive(count float64)
	RecordDBQuery(operation, status string)
	Handler() http.Handler
}

// NoOpMetrics provides a no-op implementation
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
}
func (m *NoOpMetrics) RecordCheckoutSession(kind, status string)    {}
func (m *NoOpMetrics) RecordWebhookEvent(eventType, outcome string) {}
func (m *NoOpMetrics) RecordPaymentFailure(reason string)           {}
func (m *NoOpMetrics) SetDBConnectionsActive(count float64)         {}
func (m *NoOpMetrics) RecordDBQuery(operation, status string)       {}
func (m *NoOpMetrics) Handler() http.Handler                        { return http.NotFoundHandler() }

// Global metrics instance
var globalMetrics Metrics = &NoOpMetrics{}

// Init initializes metrics (no-op for now, can be extended with Prometheus)
func Init() {
	// For now, keep using no-op metrics
}

// Handler returns the metrics handler
func Handler() http.Handler {
	return globalMetrics.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	globalMetrics.RecordHTTPRequest(method, endpoint, statusCode, duration)
}

// RecordCheckoutSession records a checkout session creation attempt
func RecordCheckoutSession(kind, status string) {
	globalMetrics.RecordCheckoutSession(kind, status)
}

// RecordWebhookEvent records a processed webhook event and its outcome
func RecordWebhookEvent(eventType, outcome string) {
	globalMetrics.RecordWebhookEvent(eventType, outcome)
}

// RecordPaymentFailure records a payment failure notification
func RecordPaymentFailure(reason string) {
	globalMetrics.RecordPaymentFailure(reason)
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	globalMetrics.SetDBConnectionsActive(count)
}

// RecordDBQuery records ledger query metrics
func RecordDBQuery(operation, status string) {
	globalMetrics.RecordDBQuery(operation, status)
}

// SetMetrics swaps the global metrics implementation (used by tests)
func SetMetrics(m Metrics) {
	if m == nil {
		globalMetrics = &NoOpMetrics{}
		return
	}
	globalMetrics = m
}
