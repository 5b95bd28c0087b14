package navgraph

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/Garsondee/floorwalk/internal/validation"
	"github.com/Garsondee/floorwalk/internal/vec"
)

func init() {
	validation.RegisterValidation("nodetype", func(fl validator.FieldLevel) bool {
		t := NodeType(fl.Field().Int())
		return t >= Room && t <= Elevator
	})
}

// Declaration is the authored description of one node, as it appears in a
// level file. Neighbours are referenced by name and resolved during Build.
type Declaration struct {
	Name      string   `yaml:"name" validate:"required,max=128"`
	Floor     int      `yaml:"floor"`
	Type      NodeType `yaml:"type" validate:"nodetype"`
	Position  vec.Vec3 `yaml:"position"`
	Neighbors []string `yaml:"neighbors,omitempty"`
}

// DiagnosticKind classifies a build problem. None of them abort the build.
type DiagnosticKind int

const (
	DiagInvalidDeclaration DiagnosticKind = iota // node skipped
	DiagDuplicateName                            // later declaration skipped
	DiagUnresolvedNeighbor                       // edge skipped
	DiagSelfNeighbor                             // edge skipped
	DiagNoNodes                                  // empty graph
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagInvalidDeclaration:
		return "invalid_declaration"
	case DiagDuplicateName:
		return "duplicate_name"
	case DiagUnresolvedNeighbor:
		return "unresolved_neighbor"
	case DiagSelfNeighbor:
		return "self_neighbor"
	case DiagNoNodes:
		return "no_nodes"
	default:
		return "unknown"
	}
}

// Diagnostic is one data-integrity warning raised while building.
type Diagnostic struct {
	Kind     DiagnosticKind
	Node     string
	Neighbor string
	Message  string
}

func (d Diagnostic) Error() string {
	if d.Neighbor != "" {
		return fmt.Sprintf("%s: node %q neighbor %q: %s", d.Kind, d.Node, d.Neighbor, d.Message)
	}
	return fmt.Sprintf("%s: node %q: %s", d.Kind, d.Node, d.Message)
}

// Diagnostics collects every warning from one Build call.
type Diagnostics []Diagnostic

// Err joins the diagnostics into a single error, or nil when there are none.
// Callers that want a strict build treat a non-nil Err as fatal.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Count returns how many diagnostics have the given kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

type buildConfig struct {
	logger *slog.Logger
}

// BuildOption customises Build.
type BuildOption func(*buildConfig)

// WithLogger logs each diagnostic at WARN and a summary at INFO.
func WithLogger(l *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Build turns declarations into a Graph in two passes: every valid node is
// created first, then neighbour names are resolved. Problems are returned as
// diagnostics and the affected node or edge is left out; the returned graph is
// always usable, possibly partial.
func Build(decls []Declaration, opts ...BuildOption) (*Graph, Diagnostics) {
	cfg := buildConfig{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}

	g := newGraph()
	var diags Diagnostics
	warn := func(d Diagnostic) {
		diags = append(diags, d)
		cfg.logger.Warn("navgraph: build diagnostic",
			"kind", d.Kind.String(), "node", d.Node, "neighbor", d.Neighbor, "detail", d.Message)
	}

	// Pass 1: nodes. declared[i] is nil when declaration i was skipped.
	declared := make([]*Node, len(decls))
	for i := range decls {
		d := &decls[i]
		if err := validation.Struct(d); err != nil {
			warn(Diagnostic{Kind: DiagInvalidDeclaration, Node: d.Name, Message: err.Error()})
			continue
		}
		if _, dup := g.byName[d.Name]; dup {
			warn(Diagnostic{Kind: DiagDuplicateName, Node: d.Name, Message: "name already declared, declaration ignored"})
			continue
		}
		n := &Node{name: d.Name, floor: d.Floor, typ: d.Type, pos: d.Position}
		g.add(n)
		declared[i] = n
	}

	// Pass 2: links.
	for i, n := range declared {
		if n == nil {
			continue
		}
		for _, nbName := range decls[i].Neighbors {
			if nbName == n.name {
				warn(Diagnostic{Kind: DiagSelfNeighbor, Node: n.name, Neighbor: nbName, Message: "node lists itself as a neighbor"})
				continue
			}
			nb, ok := g.byName[nbName]
			if !ok {
				warn(Diagnostic{Kind: DiagUnresolvedNeighbor, Node: n.name, Neighbor: nbName, Message: "no node with that name"})
				continue
			}
			if n.IsNeighbor(nb) {
				continue
			}
			n.neighbors = append(n.neighbors, nb)
		}
	}

	if g.Len() == 0 {
		warn(Diagnostic{Kind: DiagNoNodes, Message: "no nodes were built"})
	}
	g.seal()

	cfg.logger.Info("navgraph: graph built",
		"nodes", g.Len(), "floors", len(g.floors), "diagnostics", len(diags))
	return g, diags
}
