package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the signature workflow engine.
type Metrics struct {
	Enqueued       prometheus.Counter
	Claims         prometheus.Counter
	ClaimConflicts prometheus.Counter
	Actions        prometheus.Counter
	Completed      prometheus.Counter
	Cancelled      prometheus.Counter
}

// New creates and registers all routing metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Enqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_routing_items_enqueued_total",
			Help: "Documents entered into the signature routing queue.",
		}),
		Claims: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_routing_claims_total",
			Help: "Successful exclusive claims on queue items.",
		}),
		ClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_routing_claim_conflicts_total",
			Help: "Claim attempts rejected because an active claimant existed.",
		}),
		Actions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_routing_actions_total",
			Help: "Recorded signature actions.",
		}),
		Completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_routing_items_completed_total",
			Help: "Queue items that collected every required signature.",
		}),
		Cancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_routing_items_cancelled_total",
			Help: "Queue items cancelled before completion.",
		}),
	}
}
