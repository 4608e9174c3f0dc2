// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	serviceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidfetch_service_requests_total",
		Help: "Remote service round trips by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|service_error|transport_error|bad_response

	serviceRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidfetch_service_request_duration_seconds",
		Help:    "Remote service round-trip latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidfetch_deliveries_total",
		Help: "Artifact hand-offs to the host by adapter and outcome",
	}, []string{"adapter", "outcome"}) // outcome=started|saved|failed
)

// RecordServiceRequest records one remote call.
func RecordServiceRequest(operation, outcome string, elapsed time.Duration) {
	serviceRequestsTotal.WithLabelValues(operation, outcome).Inc()
	serviceRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordDelivery records a delivery adapter outcome.
func RecordDelivery(adapter, outcome string) {
	deliveriesTotal.WithLabelValues(adapter, outcome).Inc()
}
