package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all navigation metrics for one process.
type Registry struct {
	// Pathfinding Metrics
	PathSearchesTotal  *prometheus.CounterVec
	PathSearchDuration prometheus.Histogram
	PathNodesExpanded  prometheus.Histogram
	PathCost           prometheus.Histogram

	// Movement Metrics
	MovesTotal           *prometheus.CounterVec
	NodesReachedTotal    prometheus.Counter
	ElevatorRidesTotal   *prometheus.CounterVec
	ElevatorRideDuration prometheus.Histogram
	AgentsByState        *prometheus.GaugeVec

	// Graph Metrics
	GraphNodesTotal       prometheus.Gauge
	GraphFloorsTotal      prometheus.Gauge
	GraphDiagnosticsTotal *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initPathMetrics()
	r.initMovementMetrics()
	r.initGraphMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
