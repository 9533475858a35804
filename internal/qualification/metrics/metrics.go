package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for qualification evaluation.
type Metrics struct {
	Evaluations *prometheus.CounterVec
}

// New creates and registers all evaluation metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "marksman_qualification_evaluations_total",
			Help: "Qualification status evaluations by outcome.",
		}, []string{"outcome"}),
	}
}

// Observe records one evaluation outcome.
func (m *Metrics) Observe(outcome string) {
	m.Evaluations.WithLabelValues(outcome).Inc()
}
