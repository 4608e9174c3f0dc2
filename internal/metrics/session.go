// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidfetch_session_transitions_total",
		Help: "Applied session events by sub-flow and event",
	}, []string{"subflow", "event"})

	validationRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidfetch_validation_rejections_total",
		Help: "Intents rejected locally before reaching the service",
	}, []string{"reason"}) // reason=empty_url|invalid_url|no_metadata|unknown_quality

	subflowsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vidfetch_subflows_in_flight",
		Help: "Sub-flows currently waiting on the service",
	}, []string{"subflow"})
)

// RecordTransition counts an applied session event.
func RecordTransition(subflow, event string) {
	sessionTransitionsTotal.WithLabelValues(subflow, event).Inc()
}

// RecordValidationRejection counts an intent refused before any network call.
func RecordValidationRejection(reason string) {
	validationRejectionsTotal.WithLabelValues(reason).Inc()
}

// SubflowStarted marks a sub-flow as waiting on the service.
func SubflowStarted(subflow string) {
	subflowsInFlight.WithLabelValues(subflow).Inc()
}

// SubflowFinished clears the in-flight mark set by SubflowStarted.
func SubflowFinished(subflow string) {
	subflowsInFlight.WithLabelValues(subflow).Dec()
}
