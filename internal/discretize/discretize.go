// Package discretize maps continuous sensor values into categorical bins.
package discretize

import (
	"errors"
	"fmt"
)

// UnknownLabel is the placeholder used for a state component whose sensor is
// missing from a reading or whose value fell outside the configured bins.
const UnknownLabel = "unknown"

// ErrOutOfRange is returned when a value falls below the lowest bin boundary.
var ErrOutOfRange = errors.New("value below minimum bin boundary")

// Scheme is a binning scheme: n+1 ascending boundaries and n labels, one per
// half-open interval [Bins[i], Bins[i+1]). Values at or above the last
// boundary map to the last label. Must satisfy len(Labels) == len(Bins)-1
// with strictly increasing Bins; construction-time validation is the config
// loader's job, not rechecked here.
type Scheme struct {
	Bins   []float64 `yaml:"bins" json:"bins"`
	Labels []string  `yaml:"labels" json:"labels"`
}

// Bin returns the label for the interval containing value.
func (s Scheme) Bin(value float64) (string, error) {
	for i := 0; i < len(s.Bins)-1; i++ {
		if s.Bins[i] <= value && value < s.Bins[i+1] {
			return s.Labels[i], nil
		}
	}
	// Top interval is closed-ended upward.
	if value >= s.Bins[len(s.Bins)-1] {
		return s.Labels[len(s.Labels)-1], nil
	}
	return "", fmt.Errorf("%w: %v < %v", ErrOutOfRange, value, s.Bins[0])
}

// Discretize bins a full sensor-value mapping against per-sensor schemes.
// The result contains only sensors that have a scheme, are present in the
// input, and are in range; out-of-range sensors are silently dropped, so a
// caller assembling a state must substitute UnknownLabel for absent keys.
func Discretize(sensors map[string]float64, schemes map[string]Scheme) map[string]string {
	result := make(map[string]string, len(schemes))
	for name, scheme := range schemes {
		value, ok := sensors[name]
		if !ok {
			continue
		}
		label, err := scheme.Bin(value)
		if err != nil {
			continue
		}
		result[name] = label
	}
	return result
}
