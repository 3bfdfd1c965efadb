package suppress

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "defillet"

// Metrics counts driver activity. A nil *Metrics records nothing.
type Metrics struct {
	// RunsTotal counts driver runs by outcome (done, failed, cancelled).
	RunsTotal *prometheus.CounterVec
	// AttemptsTotal counts chain suppression attempts by result (ok, failed).
	AttemptsTotal *prometheus.CounterVec
	// ChainsSuppressed counts chains removed.
	ChainsSuppressed prometheus.Counter
	// GraphRebuilds counts adjacency graph rebuilds.
	GraphRebuilds prometheus.Counter
	// RunDurationSeconds measures wall time per run.
	RunDurationSeconds prometheus.Histogram
}

// NewMetrics creates the driver metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "suppression_runs_total",
			Help:      "Blend suppression runs by outcome",
		}, []string{"outcome"}),
		AttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "suppression_attempts_total",
			Help:      "Chain suppression attempts by result",
		}, []string{"result"}),
		ChainsSuppressed: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chains_suppressed_total",
			Help:      "Blend chains removed",
		}),
		GraphRebuilds: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "graph_rebuilds_total",
			Help:      "Adjacency graph rebuilds after a topology change",
		}),
		RunDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "suppression_run_duration_seconds",
			Help:      "Blend suppression run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

func (m *Metrics) attempt(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.AttemptsTotal.WithLabelValues("ok").Inc()
		m.ChainsSuppressed.Inc()
	} else {
		m.AttemptsTotal.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) rebuild() {
	if m != nil {
		m.GraphRebuilds.Inc()
	}
}

func (m *Metrics) finish(o Outcome, seconds float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(o.String()).Inc()
	m.RunDurationSeconds.Observe(seconds)
}
