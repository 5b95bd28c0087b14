package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initMovementMetrics() {
	r.MovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorwalk_moves_total",
			Help: "Move requests and their outcomes",
		},
		[]string{"outcome"},
	)

	r.NodesReachedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "floorwalk_nodes_reached_total",
			Help: "Path nodes physically reached by agents",
		},
	)

	r.ElevatorRidesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorwalk_elevator_rides_total",
			Help: "Completed elevator rides by destination floor",
		},
		[]string{"floor"},
	)

	r.ElevatorRideDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorwalk_elevator_ride_duration_seconds",
			Help:    "Simulated elevator ride time in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10},
		},
	)

	r.AgentsByState = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "floorwalk_agents",
			Help: "Agents currently in each movement state",
		},
		[]string{"state"},
	)
}
