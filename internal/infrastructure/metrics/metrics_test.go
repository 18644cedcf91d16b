package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)

	m.OrderCreated("gallop", false)
	m.OrderCreated("gallop", false)
	m.OrderCreated("starter", true)
	m.VerificationOutcome("verified")
	m.SubscriptionDowngraded("gallop")
	m.GateDecision("create_listing", true, "")
	m.GateDecision("create_listing", false, "quota_exceeded")
	m.RefundRecorded("trot")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("gallop", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("starter", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifications.WithLabelValues("verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downgrades.WithLabelValues("gallop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("create_listing", "denied", "quota_exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refunds.WithLabelValues("trot")))

	families, err := registry.Gather()
	assert.NoError(t, err)
	assert.Len(t, families, 5)
}
