// SPDX-License-Identifier: MIT

package lsystem

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "lindenmayer"
	metricsSubsystem = "step"
)

// Metrics groups the collectors a System updates while stepping.
type Metrics struct {
	// StepsTotal counts completed steps.
	StepsTotal prometheus.Counter

	// CancellationsTotal counts steps abandoned on context end.
	CancellationsTotal prometheus.Counter

	// SymbolsProducedTotal counts symbols written into new generations.
	SymbolsProducedTotal prometheus.Counter

	// RewrittenTotal counts symbols replaced by a matching rule.
	RewrittenTotal prometheus.Counter

	// StageDurationSeconds measures each stage.
	// Labels: stage (size-counting, matching, replacement-sizing, replacing)
	StageDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "steps_total",
			Help:      "Total number of completed generation steps",
		}),
		CancellationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "cancellations_total",
			Help:      "Total number of steps abandoned because their context ended",
		}),
		SymbolsProducedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "symbols_produced_total",
			Help:      "Total number of symbols written into new generations",
		}),
		RewrittenTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "rewritten_total",
			Help:      "Total number of symbols replaced by a matching rule",
		}),
		StageDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each stepping stage in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"stage"}),
	}
}

func (m *Metrics) observeStage(stage Stage, seconds float64) {
	if m == nil {
		return
	}
	m.StageDurationSeconds.WithLabelValues(stage.String()).Observe(seconds)
}

func (m *Metrics) recordStep(produced, rewritten int) {
	if m == nil {
		return
	}
	m.StepsTotal.Inc()
	m.SymbolsProducedTotal.Add(float64(produced))
	m.RewrittenTotal.Add(float64(rewritten))
}

func (m *Metrics) recordCancel() {
	if m == nil {
		return
	}
	m.CancellationsTotal.Inc()
}
