package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "floorwalk_graph_nodes",
			Help: "Nodes in the loaded graph",
		},
	)

	r.GraphFloorsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "floorwalk_graph_floors",
			Help: "Distinct floors in the loaded graph",
		},
	)

	r.GraphDiagnosticsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorwalk_graph_diagnostics_total",
			Help: "Build diagnostics by kind",
		},
		[]string{"kind"},
	)
}
