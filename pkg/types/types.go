// Package types defines the public domain types for the Forewarn
// failure-pattern discovery engine.
package types

import (
	"fmt"
	"strings"
	"time"
)

// TimeKey is a totally ordered temporal key for a record. It can carry a
// wall-clock timestamp (unix seconds), cumulative runtime hours, or a plain
// row sequence number; records of the same machine are only ever compared
// against each other, so the unit does not matter as long as it is monotonic.
type TimeKey float64

// TimeKeyFromTime converts a wall-clock timestamp into a TimeKey.
func TimeKeyFromTime(t time.Time) TimeKey {
	return TimeKey(float64(t.UnixNano()) / float64(time.Second))
}

// Record is the canonical form of a historical sensor reading. All ingest
// adapters normalize their source format into this structure before any
// graph construction happens.
type Record struct {
	MachineID string             `json:"machineId"`
	TimeKey   TimeKey            `json:"timeKey"`
	Sensors   map[string]float64 `json:"sensors"`
	Failure   bool               `json:"failure"`
}

// State is a machine's discretized condition: one bin label per configured
// state component, in component order. Two states with the same machine ID
// and the same label tuple are the same logical graph node no matter how
// many times they are constructed.
type State struct {
	MachineID string   `json:"machineId"`
	Bins      []string `json:"bins"`
}

// Key returns the canonical identity string used for node deduplication and
// set membership. States with equal keys are equal states.
func (s State) Key() string {
	return s.MachineID + "|" + strings.Join(s.Bins, ",")
}

// Equal reports whether two states are the same logical node.
func (s State) Equal(other State) bool {
	if s.MachineID != other.MachineID || len(s.Bins) != len(other.Bins) {
		return false
	}
	for i := range s.Bins {
		if s.Bins[i] != other.Bins[i] {
			return false
		}
	}
	return true
}

func (s State) String() string {
	return fmt.Sprintf("State(machine=%s, bins=(%s))", s.MachineID, strings.Join(s.Bins, ","))
}

// FailureSequence is an aggregated run of states observed to precede a
// failure. The terminal failure state itself is excluded from Sequence.
type FailureSequence struct {
	Sequence  []State  `json:"sequence"`
	Frequency int      `json:"frequency"`
	Machines  []string `json:"machines"`

	// AvgTimeToFailure is reserved; the current design never computes it.
	AvgTimeToFailure float64 `json:"avg_time_to_failure"`
}

// WarningSign is a ranked, human-readable pattern found to precede failures.
type WarningSign struct {
	Pattern         string  `json:"pattern"`
	PredictiveScore float64 `json:"predictive_score"`
	Frequency       int     `json:"frequency"`

	// FalsePositiveRate is reserved and always 0; no formula is defined for
	// it in the current design.
	FalsePositiveRate float64 `json:"false_positive_rate"`
}

// Reading is a raw per-row sensor reading consumed by the rule classifier.
// Values stay as strings so missing and unparsable cells can be told apart
// from legitimate zeroes.
type Reading struct {
	Timestamp   string            `json:"timestamp"`
	EquipmentID string            `json:"equipment_id"`
	Values      map[string]string `json:"values"`
}

// Classification is the rule classifier's verdict for a single reading.
type Classification struct {
	Timestamp     string               `json:"timestamp"`
	EquipmentID   string               `json:"equipment_id"`
	Status        ClassificationStatus `json:"status"`
	ViolatedRules []string             `json:"violated_rules"`
	Confidence    float64              `json:"confidence"`
}

// Alert is a notification dispatched to configured sinks when a classifier
// flags an anomaly or a discovery run produces a high-scoring warning sign.
type Alert struct {
	Level     AlertLevel `json:"level"`
	MachineID string     `json:"machineId,omitempty"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}
