// Package report writes discovery and classification artifacts to disk in
// the formats downstream tooling consumes.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Output file names inside the run output directory.
const (
	SequencesFile       = "sequences.json"
	WarningSignsFile    = "warning_signs.json"
	ClassificationsFile = "classifications.jsonl"
	AlertsFile          = "alerts.log"
)

// sequenceRecord is the on-disk form of a failure sequence. States are
// rendered as display strings so the file reads without knowledge of the
// bin schema.
type sequenceRecord struct {
	Sequence         []string `json:"sequence"`
	Frequency        int      `json:"frequency"`
	Machines         []string `json:"machines"`
	AvgTimeToFailure float64  `json:"avg_time_to_failure"`
}

// WriteSequences writes aggregated failure sequences as pretty-printed JSON.
func WriteSequences(dir string, sequences []types.FailureSequence) error {
	records := make([]sequenceRecord, len(sequences))
	for i, seq := range sequences {
		rendered := make([]string, len(seq.Sequence))
		for j, s := range seq.Sequence {
			rendered[j] = s.String()
		}
		records[i] = sequenceRecord{
			Sequence:         rendered,
			Frequency:        seq.Frequency,
			Machines:         seq.Machines,
			AvgTimeToFailure: seq.AvgTimeToFailure,
		}
	}
	return writeJSON(filepath.Join(dir, SequencesFile), records)
}

// WriteWarningSigns writes ranked warning signs as pretty-printed JSON.
func WriteWarningSigns(dir string, signs []types.WarningSign) error {
	return writeJSON(filepath.Join(dir, WarningSignsFile), signs)
}

// WriteClassificationsJSONL appends classifier verdicts, one JSON object
// per line, so successive batches accumulate in the same file.
func WriteClassificationsJSONL(dir string, classifications []types.Classification) error {
	path := filepath.Join(dir, ClassificationsFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, c := range classifications {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encoding classification: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// WriteAlertsText appends alerts to a plain text log, one per line.
func WriteAlertsText(path string, alerts []types.Alert) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating alert log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, a := range alerts {
		line := fmt.Sprintf("%s [%s] %s", a.Timestamp.Format("2006-01-02T15:04:05Z07:00"), a.Level, a.Message)
		if a.MachineID != "" {
			line += fmt.Sprintf(" (machine=%s)", a.MachineID)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing alert: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
