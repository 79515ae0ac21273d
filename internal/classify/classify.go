// Package classify implements the simple rule-evaluation classifier: per
// reading, propositional min/max/missing checks against configured
// thresholds, with per-equipment overrides taking precedence over the
// global defaults.
package classify

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dwsmith1983/forewarn/internal/config"
	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Confidence heuristic constants. A single violation starts at the base,
// each additional violation adds a step up to the ceiling, and any missing
// sensor discounts the result as a possible data-quality issue.
const (
	baseConfidence   = 0.7
	confidenceStep   = 0.1
	maxConfidence    = 0.95
	missingDiscount  = 0.8
	normalConfidence = 1.0
)

// Classifier evaluates readings against threshold rules.
type Classifier struct {
	cfg config.ClassifierConfig

	// sensor names in deterministic evaluation order
	sensors []string
}

// New creates a Classifier from configuration. Rule evaluation order is the
// sorted set of sensors named anywhere in the config, so violation lists
// are stable across runs.
func New(cfg config.ClassifierConfig) *Classifier {
	seen := make(map[string]struct{})
	var sensors []string
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			sensors = append(sensors, name)
		}
	}
	for name := range cfg.Thresholds {
		add(name)
	}
	for _, overrides := range cfg.Equipment {
		for name := range overrides {
			add(name)
		}
	}
	sort.Strings(sensors)

	return &Classifier{cfg: cfg, sensors: sensors}
}

// Classify evaluates one reading and returns its status, the violated
// rules, and a confidence estimate.
func (c *Classifier) Classify(reading types.Reading) types.Classification {
	violations := c.EvaluateRules(reading)

	status := types.StatusNormal
	confidence := normalConfidence
	if len(violations) > 0 {
		status = types.StatusAnomaly
		confidence = baseConfidence + float64(len(violations)-1)*confidenceStep
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		if hasMissing(violations) {
			confidence *= missingDiscount
		}
		metrics.AnomaliesDetected.Add(1)
	}
	metrics.ReadingsClassified.Add(1)

	return types.Classification{
		Timestamp:     reading.Timestamp,
		EquipmentID:   reading.EquipmentID,
		Status:        status,
		ViolatedRules: violations,
		Confidence:    confidence,
	}
}

// ClassifyAll evaluates a batch of readings in order.
func (c *Classifier) ClassifyAll(readings []types.Reading) []types.Classification {
	out := make([]types.Classification, len(readings))
	for i, r := range readings {
		out[i] = c.Classify(r)
	}
	return out
}

// EvaluateRules returns the violated rule names for a reading:
// "missing_<sensor>" when the value is absent or unparsable,
// "<sensor>_high" above max, "<sensor>_low" below min.
func (c *Classifier) EvaluateRules(reading types.Reading) []string {
	var violations []string
	for _, sensor := range c.sensors {
		value, ok := parseValue(reading.Values[sensor])
		if !ok {
			violations = append(violations, fmt.Sprintf("missing_%s", sensor))
			continue
		}

		threshold, found := c.thresholdFor(sensor, reading.EquipmentID)
		if !found {
			continue
		}
		if threshold.Max != nil && value > *threshold.Max {
			violations = append(violations, fmt.Sprintf("%s_high", sensor))
		}
		if threshold.Min != nil && value < *threshold.Min {
			violations = append(violations, fmt.Sprintf("%s_low", sensor))
		}
	}
	return violations
}

// thresholdFor resolves the threshold for a sensor, preferring an
// equipment-specific override over the global config.
func (c *Classifier) thresholdFor(sensor, equipmentID string) (config.Threshold, bool) {
	if equipmentID != "" {
		if overrides, ok := c.cfg.Equipment[equipmentID]; ok {
			if t, ok := overrides[sensor]; ok {
				return t, true
			}
		}
	}
	t, ok := c.cfg.Thresholds[sensor]
	return t, ok
}

func parseValue(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func hasMissing(violations []string) bool {
	for _, v := range violations {
		if len(v) > 8 && v[:8] == "missing_" {
			return true
		}
	}
	return false
}
