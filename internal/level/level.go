// Package level loads building descriptions: the node graph, movement tuning
// and the agents placed in it.
package level

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/floorwalk/internal/movement"
	"github.com/Garsondee/floorwalk/internal/navgraph"
	"github.com/Garsondee/floorwalk/internal/validation"
)

// ErrNoNodes is returned for a level without any node declarations.
var ErrNoNodes = errors.New("level: no nodes declared")

// File is the on-disk level format.
type File struct {
	Name     string                 `yaml:"name" validate:"required,max=128"`
	Movement movement.Config        `yaml:"movement"`
	Nodes    []navgraph.Declaration `yaml:"nodes"`
	Agents   []AgentSpec            `yaml:"agents" validate:"dive"`
	// Quarry is the label of the agent that guards chase, if any.
	Quarry string `yaml:"quarry,omitempty"`
}

// AgentSpec places one agent.
type AgentSpec struct {
	Label    string `yaml:"label" validate:"required,max=64"`
	Spawn    string `yaml:"spawn" validate:"required"`
	Selected bool   `yaml:"selected,omitempty"`
	// Orders are visited in sequence, one MoveToNode per completed leg.
	Orders []string    `yaml:"orders,omitempty"`
	Patrol *PatrolSpec `yaml:"patrol,omitempty"`
	// DetectRange > 0 makes the agent chase the level's quarry when it comes
	// within this distance on the same floor.
	DetectRange float64 `yaml:"detect_range,omitempty" validate:"gte=0"`
}

type PatrolSpec struct {
	Mode  string   `yaml:"mode" validate:"omitempty,oneof=fixed_route random_room"`
	Route []string `yaml:"route,omitempty"`
}

// Load reads a level from a .yaml, .yml or .json file.
func Load(path string) (*File, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("level: unsupported format %q (supported: .yaml, .yml, .json)", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("level: %s: %w", path, err)
	}
	return f, nil
}

// Decode parses and validates a level. Movement keys left out keep their
// movement.DefaultConfig values.
func Decode(data []byte) (*File, error) {
	f := &File{Movement: movement.DefaultConfig()}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the parts a graph build does not: agents, tuning and
// label uniqueness. Node problems are reported by Graph as diagnostics.
func (f *File) Validate() error {
	if len(f.Nodes) == 0 {
		return ErrNoNodes
	}
	if err := validation.Struct(f); err != nil {
		return err
	}
	seen := make(map[string]bool, len(f.Agents))
	for _, a := range f.Agents {
		if seen[a.Label] {
			return fmt.Errorf("duplicate agent label %q", a.Label)
		}
		seen[a.Label] = true
	}
	if f.Quarry != "" && !seen[f.Quarry] {
		return fmt.Errorf("quarry %q is not an agent label", f.Quarry)
	}
	return nil
}

// Graph builds the level's node graph.
func (f *File) Graph(logger *slog.Logger) (*navgraph.Graph, navgraph.Diagnostics) {
	return navgraph.Build(f.Nodes, navgraph.WithLogger(logger))
}

// Marshal renders the level back to YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
