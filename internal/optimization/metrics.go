package optimization

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by an Optimizer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Evaluations    *prometheus.CounterVec
	CallbackFaults *prometheus.CounterVec
	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlopt",
			Name:      "evaluations_total",
			Help:      "Host callback invocations by callback kind.",
		}, []string{"kind"}),
		CallbackFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlopt",
			Name:      "callback_faults_total",
			Help:      "Runs halted by a misbehaving callback, by error kind.",
		}, []string{"kind"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlopt",
			Name:      "runs_total",
			Help:      "Optimize calls by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nlopt",
			Name:      "run_duration_seconds",
			Help:      "Wall time of Optimize calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.CallbackFaults, m.Runs, m.RunDuration)
	}
	return m
}

func (m *Metrics) observeEvaluation(kind string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeFault(kind Kind) {
	if m == nil {
		return
	}
	m.CallbackFaults.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
