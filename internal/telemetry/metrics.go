package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BillingMetrics holds Prometheus metrics for reconciliation observability.
// All helpers are safe to call on a nil *BillingMetrics.
type BillingMetrics struct {
	// Webhooks
	WebhookReceived *prometheus.CounterVec
	WebhookOutcome  *prometheus.CounterVec
	WebhookFailed   *prometheus.CounterVec
	WebhookLatency  *prometheus.HistogramVec

	// Convergence
	PaymentsRecorded *prometheus.CounterVec

	// Subscriptions
	SubscriptionTransitions *prometheus.CounterVec

	// Plan resolution
	PlanResolved           *prometheus.CounterVec
	PlanResolutionFailures prometheus.Counter

	// Data quality
	TimestampFallbacks *prometheus.CounterVec

	// Notifications
	NotificationsFailed *prometheus.CounterVec

	// External API performance
	StripeAPILatency *prometheus.HistogramVec
}

// NewBillingMetrics creates all billing metrics and registers them with reg.
// Passing a fresh prometheus.NewRegistry() keeps tests isolated.
func NewBillingMetrics(namespace string, reg prometheus.Registerer) *BillingMetrics {
	if namespace == "" {
		namespace = "billsync"
	}
	factory := promauto.With(reg)

	return &BillingMetrics{
		// =======================================================================
		// Webhooks
		// =======================================================================
		WebhookReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "received_total",
				Help:      "Total verified webhook events received",
			},
			[]string{"event_type"},
		),
		WebhookOutcome: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "outcomes_total",
				Help:      "Webhook events by reconciliation outcome",
			},
			[]string{"event_type", "outcome"}, // outcome: processed, duplicate, ignored, not_found, failed
		),
		WebhookFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "failures_total",
				Help:      "Webhook deliveries rejected or failed",
			},
			[]string{"event_type", "reason"}, // reason: signature, unconfigured, handler_error, panic, timeout
		),
		WebhookLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "duration_seconds",
				Help:      "Time spent reconciling one webhook event",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),

		// =======================================================================
		// Convergence
		// =======================================================================
		PaymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "payments_recorded_total",
				Help:      "Checkout payment recording attempts by write path and result",
			},
			[]string{"path", "result"}, // path: webhook, redirect; result: created, already_exists, skipped
		),

		// =======================================================================
		// Subscriptions
		// =======================================================================
		SubscriptionTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "subscription_transitions_total",
				Help:      "Subscription lifecycle transitions applied",
			},
			[]string{"transition"}, // created, updated, cancelled, renewed, past_due
		),

		// =======================================================================
		// Plan resolution
		// =======================================================================
		PlanResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "plan_resolved_total",
				Help:      "Plan tiers resolved, by the step that produced them",
			},
			[]string{"step"}, // metadata, checkout_session, price_table
		),
		PlanResolutionFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_resolution_failures_total",
				Help:      "Plan resolutions that fell through to the unknown tier",
			},
		),

		// =======================================================================
		// Data quality
		// =======================================================================
		TimestampFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "timestamp_fallbacks_total",
				Help:      "Processor timestamps replaced by a fallback value",
			},
			[]string{"field"},
		),

		// =======================================================================
		// Notifications
		// =======================================================================
		NotificationsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notify",
				Name:      "publish_failures_total",
				Help:      "Change notifications that could not be published",
			},
			[]string{"subject"},
		),

		// =======================================================================
		// External API
		// =======================================================================
		StripeAPILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stripe",
				Name:      "lookup_duration_seconds",
				Help:      "Stripe lookup latency by operation and result",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "result"},
		),
	}
}

func (m *BillingMetrics) WebhookReceivedInc(eventType string) {
	if m == nil {
		return
	}
	m.WebhookReceived.WithLabelValues(eventType).Inc()
}

func (m *BillingMetrics) ObserveWebhook(eventType, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.WebhookOutcome.WithLabelValues(eventType, outcome).Inc()
	m.WebhookLatency.WithLabelValues(eventType).Observe(time.Since(started).Seconds())
}

func (m *BillingMetrics) WebhookFailedInc(eventType, reason string) {
	if m == nil {
		return
	}
	m.WebhookFailed.WithLabelValues(eventType, reason).Inc()
}

func (m *BillingMetrics) PaymentRecordedInc(path, result string) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(path, result).Inc()
}

func (m *BillingMetrics) TransitionInc(transition string) {
	if m == nil {
		return
	}
	m.SubscriptionTransitions.WithLabelValues(transition).Inc()
}

func (m *BillingMetrics) PlanResolvedInc(step string) {
	if m == nil {
		return
	}
	m.PlanResolved.WithLabelValues(step).Inc()
}

func (m *BillingMetrics) PlanResolutionFailureInc() {
	if m == nil {
		return
	}
	m.PlanResolutionFailures.Inc()
}

func (m *BillingMetrics) TimestampFallbackInc(field string) {
	if m == nil {
		return
	}
	m.TimestampFallbacks.WithLabelValues(field).Inc()
}

func (m *BillingMetrics) NotificationFailedInc(subject string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(subject).Inc()
}

// ObserveLookup records the latency of one Stripe lookup.
func (m *BillingMetrics) ObserveLookup(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StripeAPILatency.WithLabelValues(operation, result).Observe(time.Since(started).Seconds())
}
