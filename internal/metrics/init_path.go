package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPathMetrics() {
	r.PathSearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorwalk_path_searches_total",
			Help: "Total number of A* searches by result",
		},
		[]string{"result"},
	)

	r.PathSearchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorwalk_path_search_duration_seconds",
			Help:    "A* search duration in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	r.PathNodesExpanded = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorwalk_path_nodes_expanded",
			Help:    "Number of nodes expanded per A* search",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 500},
		},
	)

	r.PathCost = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorwalk_path_cost",
			Help:    "Summed edge length of found paths",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)
}
