package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	dto "github.com/prometheus/client_model/go"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
)

// Observe implements movement.Observer.
func (r *Registry) Observe(e movement.Event) {
	switch e.Kind {
	case movement.EventMoveAccepted, movement.EventMoveQueued:
		r.MovesTotal.WithLabelValues(e.Result.String()).Inc()
		// A move resumed after a ride carries no search of its own.
		if e.Expanded > 0 {
			r.RecordSearch("found", e)
		}
	case movement.EventMoveRejected:
		r.MovesTotal.WithLabelValues(e.Result.String()).Inc()
		if e.Result == movement.MoveRejectedUnreachable {
			r.RecordSearch("unreachable", e)
		}
	case movement.EventMoveCancelled:
		r.MovesTotal.WithLabelValues("cancelled").Inc()
	case movement.EventMoveComplete:
		r.MovesTotal.WithLabelValues("complete").Inc()
	case movement.EventNodeReached:
		r.NodesReachedTotal.Inc()
	case movement.EventElevatorExit:
		r.ElevatorRidesTotal.WithLabelValues(strconv.Itoa(e.Floor)).Inc()
		r.ElevatorRideDuration.Observe(e.Duration.Seconds())
	}
}

// RecordSearch records one A* search carried by a movement event.
func (r *Registry) RecordSearch(result string, e movement.Event) {
	r.PathSearchesTotal.WithLabelValues(result).Inc()
	r.PathNodesExpanded.Observe(float64(e.Expanded))
	if e.Duration > 0 {
		r.PathSearchDuration.Observe(e.Duration.Seconds())
	}
	if result == "found" {
		r.PathCost.Observe(e.Value)
	}
}

// RecordGraphBuild records the size of a built graph and its diagnostics.
func (r *Registry) RecordGraphBuild(g *navgraph.Graph, diags navgraph.Diagnostics) {
	if g != nil {
		r.GraphNodesTotal.Set(float64(g.Len()))
		r.GraphFloorsTotal.Set(float64(len(g.Floors())))
	}
	for _, d := range diags {
		r.GraphDiagnosticsTotal.WithLabelValues(d.Kind.String()).Inc()
	}
}

// SetAgentStates replaces the per-state agent gauges.
func (r *Registry) SetAgentStates(counts map[movement.State]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range []movement.State{movement.Idle, movement.Moving, movement.InElevator} {
		r.AgentsByState.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}

// Gather collects every metric family from the underlying registry.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

// Lines renders gathered metrics as sorted "name{labels} value" lines.
// Histograms contribute their _count and _sum.
func (r *Registry) Lines() ([]string, error) {
	families, err := r.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	var out []string
	for _, mf := range families {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out = append(out, fmt.Sprintf("%s%s %g", name, labels, m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				out = append(out, fmt.Sprintf("%s%s %g", name, labels, m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				out = append(out,
					fmt.Sprintf("%s_count%s %d", name, labels, h.GetSampleCount()),
					fmt.Sprintf("%s_sum%s %g", name, labels, h.GetSampleSum()))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
