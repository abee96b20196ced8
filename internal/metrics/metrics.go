// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the approval workflow.
type Metrics struct {
	// Decision outcomes by status and risk level
	DecisionOutcome *prometheus.CounterVec

	// Tokens disbursed, by pool name
	TokensDisbursed *prometheus.CounterVec

	// End-to-end approval latency including the external transfer
	ApprovalLatency prometheus.Histogram

	// Disbursement failures by error kind
	DisbursementFailures *prometheus.CounterVec
}

// New creates a Metrics instance with all workflow metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subsidy_decision_outcomes_total",
			Help: "Total certifier decisions by outcome and risk level",
		}, []string{"outcome", "risk_level"}),

		TokensDisbursed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subsidy_tokens_disbursed_total",
			Help: "Total token base units disbursed, by pool",
		}, []string{"pool"}),

		ApprovalLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "subsidy_approval_duration_seconds",
			Help:    "Duration of approval handling including the fund transfer",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180},
		}),

		DisbursementFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subsidy_disbursement_failures_total",
			Help: "Disbursement attempts that did not commit, by error kind",
		}, []string{"kind"}),
	}
}

// RecordDecision counts a terminal decision.
func (m *Metrics) RecordDecision(outcome, riskLevel string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(outcome, riskLevel).Inc()
	}
}

// RecordDisbursement counts committed tokens for a pool.
func (m *Metrics) RecordDisbursement(pool string, amount int64) {
	if m != nil {
		m.TokensDisbursed.WithLabelValues(pool).Add(float64(amount))
	}
}

// RecordFailure counts a non-committed disbursement attempt.
func (m *Metrics) RecordFailure(kind string) {
	if m != nil {
		m.DisbursementFailures.WithLabelValues(kind).Inc()
	}
}

// ObserveApprovalLatency records the total approval duration.
func (m *Metrics) ObserveApprovalLatency(d time.Duration) {
	if m != nil {
		m.ApprovalLatency.Observe(d.Seconds())
	}
}
