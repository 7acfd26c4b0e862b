package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records checkout and payment verification outcomes.
type SettlementMetrics struct {
	checkouts     *prometheus.CounterVec
	verifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	notifyFailure *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by payment method and outcome.",
	}, []string{"method", "outcome"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verification_total",
		Help: "Gateway verification calls by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	notifyFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failure_total",
		Help: "Failed notification deliveries by event.",
	}, []string{"event"})
	reg.MustRegister(checkouts, verifications, duration, notifyFailure)
	return &SettlementMetrics{
		checkouts:     checkouts,
		verifications: verifications,
		duration:      duration,
		notifyFailure: notifyFailure,
	}
}

// IncCheckout counts one checkout attempt for the method and outcome.
func (m *SettlementMetrics) IncCheckout(method, outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncVerification counts one verification call by outcome.
func (m *SettlementMetrics) IncVerification(outcome string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveCheckoutDuration records the checkout transaction duration.
func (m *SettlementMetrics) ObserveCheckoutDuration(method string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(d.Seconds())
}

// IncNotificationFailure counts one failed notification delivery.
func (m *SettlementMetrics) IncNotificationFailure(event string) {
	if m == nil || m.notifyFailure == nil {
		return
	}
	m.notifyFailure.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
