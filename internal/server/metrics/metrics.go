// Package metrics exposes Prometheus counters for the session subsystem.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"

	DecisionAdmitted = "admitted"
	DecisionRejected = "rejected"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// SessionOps counts session service calls by operation and outcome.
	SessionOps *prometheus.CounterVec
	// GateDecisions counts gate decisions by access level and decision.
	GateDecisions *prometheus.CounterVec
	// RequestDuration observes transport request latency.
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lessonbook_session_operations_total",
			Help: "The total number of session operations by outcome",
		}, []string{"operation", "outcome"}),
		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lessonbook_gate_decisions_total",
			Help: "The total number of auth gate decisions",
		}, []string{"access", "decision"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lessonbook_request_duration_seconds",
			Help:    "The request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"transport", "route"}),
	}
}

// Session records the outcome of a session operation.
func (m *Metrics) Session(op string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.SessionOps.WithLabelValues(op, outcome).Inc()
}

// Gate records a gate decision.
func (m *Metrics) Gate(access string, admitted bool) {
	if m == nil {
		return
	}
	decision := DecisionAdmitted
	if !admitted {
		decision = DecisionRejected
	}
	m.GateDecisions.WithLabelValues(access, decision).Inc()
}

// Observe records how long a request took.
func (m *Metrics) Observe(transport, route string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(transport, route).Observe(d.Seconds())
}
