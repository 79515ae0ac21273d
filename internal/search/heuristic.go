package search

import (
	"fmt"

	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Heuristic names accepted in search parameters.
const (
	HeuristicTimeToFailure  = "time_to_failure"
	HeuristicSensorDistance = "sensor_distance"
)

// noFailureEstimate is returned by SensorDistance when no failure state of
// the same machine exists to compare against.
const noFailureEstimate = 10.0

// Heuristic estimates the remaining distance from a state to the nearest
// failure state. It must return 0 for failure states themselves.
type Heuristic func(s types.State, g *graph.Graph) float64

// HeuristicByName resolves a configured heuristic name.
func HeuristicByName(name string) (Heuristic, error) {
	switch name {
	case HeuristicTimeToFailure:
		return ConstantEstimate, nil
	case HeuristicSensorDistance:
		return SensorDistance, nil
	default:
		return nil, fmt.Errorf("unknown heuristic %q", name)
	}
}

// ConstantEstimate returns 0 at a failure state and a fixed unit estimate
// everywhere else. It is admissible as long as every edge costs one step.
func ConstantEstimate(s types.State, g *graph.Graph) float64 {
	if g.IsFailure(s) {
		return 0
	}
	return 1
}

// SensorDistance returns the minimum Hamming distance between s's label
// tuple and any same-machine failure state's tuple, or a large constant when
// no same-machine failure state exists.
func SensorDistance(s types.State, g *graph.Graph) float64 {
	if g.IsFailure(s) {
		return 0
	}

	best := -1
	for _, failure := range g.FailureStates() {
		if failure.MachineID != s.MachineID {
			continue
		}
		d := hamming(s.Bins, failure.Bins)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return noFailureEstimate
	}
	return float64(best)
}

func hamming(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
