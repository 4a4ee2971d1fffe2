package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerificationsTotal counts verify calls by reported gateway status
	// ("error" for upstream failures).
	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitmarket_payment_verifications_total",
		Help: "Total payment verification calls by gateway status",
	}, []string{"status"})

	// FulfillmentsTotal counts fulfillment outcomes per order type.
	FulfillmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitmarket_fulfillments_total",
		Help: "Total fulfillment attempts by order type and outcome",
	}, []string{"order_type", "outcome"})

	// VerifyLatency tracks end-to-end handler latency for the verify endpoint.
	VerifyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fitmarket_payment_verify_duration_seconds",
		Help:    "Verify handler latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// OutboxRetriesTotal counts dispatcher attempts by kind and outcome.
	OutboxRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitmarket_outbox_retries_total",
		Help: "Outbox dispatcher attempts by kind and outcome",
	}, []string{"kind", "outcome"})
)
