// Package metrics exports business counters in Prometheus format.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tierworks/sellertiers/internal/application/common"
)

type PrometheusMetrics struct {
	ordersCreated *prometheus.CounterVec
	verifications *prometheus.CounterVec
	downgrades    *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	refunds       *prometheus.CounterVec
}

var _ common.Metrics = (*PrometheusMetrics)(nil)

func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		ordersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sellertiers_orders_created_total",
				Help: "Orders created, by package and whether the package is free",
			},
			[]string{"package", "free"},
		),
		verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sellertiers_payment_verifications_total",
				Help: "Payment verification attempts by outcome",
			},
			[]string{"outcome"},
		),
		downgrades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sellertiers_subscription_downgrades_total",
				Help: "Lapsed subscriptions downgraded to the starter package",
			},
			[]string{"from_package"},
		),
		gateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sellertiers_gate_decisions_total",
				Help: "Entitlement gate decisions by action and result",
			},
			[]string{"action", "result", "reason"},
		),
		refunds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sellertiers_refunds_total",
				Help: "Refunds recorded in the ledger",
			},
			[]string{"package"},
		),
	}
}

func (m *PrometheusMetrics) OrderCreated(packageName string, free bool) {
	m.ordersCreated.WithLabelValues(packageName, strconv.FormatBool(free)).Inc()
}

func (m *PrometheusMetrics) VerificationOutcome(outcome string) {
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) SubscriptionDowngraded(fromPackage string) {
	m.downgrades.WithLabelValues(fromPackage).Inc()
}

func (m *PrometheusMetrics) GateDecision(action string, allowed bool, reason string) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	m.gateDecisions.WithLabelValues(action, result, reason).Inc()
}

func (m *PrometheusMetrics) RefundRecorded(packageName string) {
	m.refunds.WithLabelValues(packageName).Inc()
}
