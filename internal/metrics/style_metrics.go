package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/colabah/style-dna-service/pkg/logger"
)

// StyleMetrics collects counters for the style profile workflow
type StyleMetrics interface {
	IncSave(mode, result string)
	IncCustomerCreated()
	IncInviteSent()
	IncInviteFailed()
	IncGuestSave()
	ObserveAdminCall(operation string, ok bool, seconds float64)
}

// Save results recorded per workflow run
const (
	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
	ResultBusinessError   = "business_error"
	ResultUpstreamError   = "upstream_error"
)

type styleMetrics struct {
	log               *logger.Logger
	savesTotal        *prometheus.CounterVec
	customersCreated  prometheus.Counter
	invitesTotal      *prometheus.CounterVec
	guestSaves        prometheus.Counter
	adminCallDuration *prometheus.HistogramVec
}

// NewStyleMetrics creates the workflow metrics on the given registry
func NewStyleMetrics(registry *prometheus.Registry, log *logger.Logger) StyleMetrics {
	savesTotal := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "style_profile_saves_total",
			Help: "The total number of style profile save attempts by mode and result",
		},
		[]string{"mode", "result"},
	)

	customersCreated := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "style_profile_customers_created_total",
			Help: "The total number of customer accounts provisioned by the workflow",
		},
	)

	invitesTotal := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "style_profile_invites_total",
			Help: "The total number of account invite emails by result",
		},
		[]string{"result"},
	)

	guestSaves := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "style_profile_guest_saves_total",
			Help: "The total number of guest submissions acknowledged without a remote write",
		},
	)

	adminCallDuration := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopify_admin_call_duration_seconds",
			Help:    "Admin GraphQL API call duration by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "ok"},
	)

	return &styleMetrics{
		log:               log,
		savesTotal:        savesTotal,
		customersCreated:  customersCreated,
		invitesTotal:      invitesTotal,
		guestSaves:        guestSaves,
		adminCallDuration: adminCallDuration,
	}
}

// IncSave increments the save counter for a mode and result
func (m *styleMetrics) IncSave(mode, result string) {
	m.savesTotal.WithLabelValues(mode, result).Inc()
}

// IncCustomerCreated increments the provisioned accounts counter
func (m *styleMetrics) IncCustomerCreated() {
	m.customersCreated.Inc()
}

// IncInviteSent increments the sent invites counter
func (m *styleMetrics) IncInviteSent() {
	m.invitesTotal.WithLabelValues("sent").Inc()
}

// IncInviteFailed increments the failed invites counter
func (m *styleMetrics) IncInviteFailed() {
	m.invitesTotal.WithLabelValues("failed").Inc()
}

// IncGuestSave increments the guest submissions counter
func (m *styleMetrics) IncGuestSave() {
	m.guestSaves.Inc()
}

// ObserveAdminCall records the duration of one Admin API call
func (m *styleMetrics) ObserveAdminCall(operation string, ok bool, seconds float64) {
	status := "true"
	if !ok {
		status = "false"
	}
	m.adminCallDuration.WithLabelValues(operation, status).Observe(seconds)
}
