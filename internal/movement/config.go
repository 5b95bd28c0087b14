package movement

import (
	"fmt"
	"math"
	"time"

	"github.com/Garsondee/floorwalk/internal/validation"
)

// Config holds the steering and timing knobs shared by a group of agents.
// Distances are world units, speeds are units per second.
type Config struct {
	MoveSpeed          float64       `yaml:"move_speed" validate:"gt=0"`
	NeighborRadius     float64       `yaml:"neighbor_radius" validate:"gte=0"`
	SeparationDistance float64       `yaml:"separation_distance" validate:"gte=0"`
	CohesionWeight     float64       `yaml:"cohesion_weight" validate:"gte=0"`
	SeparationWeight   float64       `yaml:"separation_weight" validate:"gte=0"`
	AlignmentWeight    float64       `yaml:"alignment_weight" validate:"gte=0"`
	NodeWeight         float64       `yaml:"node_weight" validate:"gt=0"`
	SmoothingFactor    float64       `yaml:"smoothing_factor" validate:"gt=0,lte=1"`
	TargetRadius       float64       `yaml:"target_radius" validate:"gte=0"`
	ArrivalEpsilon     float64       `yaml:"arrival_epsilon" validate:"gt=0"`
	ElevatorTransit    time.Duration `yaml:"elevator_transit" validate:"gte=0s"`
	// ReferenceRate is the tick rate (Hz) at which SmoothingFactor applies
	// unchanged. Other tick lengths get the equivalent exponential factor.
	ReferenceRate float64 `yaml:"reference_rate" validate:"gt=0"`
}

// DefaultConfig returns the tuning the building levels were authored against.
func DefaultConfig() Config {
	return Config{
		MoveSpeed:          2,
		NeighborRadius:     4,
		SeparationDistance: 0.8,
		CohesionWeight:     0.8,
		SeparationWeight:   2,
		AlignmentWeight:    1,
		NodeWeight:         3,
		SmoothingFactor:    0.1,
		TargetRadius:       1.5,
		ArrivalEpsilon:     0.1,
		ElevatorTransit:    time.Second,
		ReferenceRate:      60,
	}
}

// Validate checks every field against its bounds.
func (c Config) Validate() error {
	if err := validation.Struct(&c); err != nil {
		return fmt.Errorf("movement config: %w", err)
	}
	return nil
}

// smoothingAlpha converts the per-reference-tick factor into the factor for a
// tick of dt seconds: 1-(1-s)^(dt*rate).
func (c Config) smoothingAlpha(dt float64) float64 {
	if c.SmoothingFactor >= 1 {
		return 1
	}
	return 1 - math.Pow(1-c.SmoothingFactor, dt*c.ReferenceRate)
}

func secondsToDuration(dt float64) time.Duration {
	return time.Duration(math.Round(dt * float64(time.Second)))
}
