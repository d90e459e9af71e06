// Package metrics exposes Prometheus metrics for rule runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels a rule run in the runs counter.
type Outcome string

const (
	// OutcomeFound is a run whose rule was found and evaluated.
	OutcomeFound Outcome = "found"
	// OutcomeAbsent is a run whose rule id was not registered.
	OutcomeAbsent Outcome = "absent"
	// OutcomeError is a run that failed in the evaluator or the publisher.
	OutcomeError Outcome = "error"
)

// Metrics records rule run counts and durations.
//
// A nil *Metrics is valid and records nothing, so the auditor does not need to
// check whether metrics are enabled.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is useful in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "a11yscan",
				Name:      "rule_runs_total",
				Help:      "Total number of virtual rule runs by rule and outcome.",
			},
			[]string{"rule", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "a11yscan",
				Name:      "rule_duration_seconds",
				Help:      "Duration of rule evaluations, including metadata publishing.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"rule"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.runs, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// ObserveRun counts one run of ruleID. The duration is recorded only for runs
// that reached the evaluator.
func (m *Metrics) ObserveRun(ruleID string, outcome Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.runs.WithLabelValues(ruleID, string(outcome)).Inc()
	if outcome != OutcomeAbsent {
		m.duration.WithLabelValues(ruleID).Observe(elapsed.Seconds())
	}
}
