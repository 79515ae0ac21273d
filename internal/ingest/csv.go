// Package ingest loads raw tabular sensor data and normalizes it into the
// canonical record format the graph builder consumes.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Default column names for timestamped history CSVs.
const (
	DefaultTimestampColumn = "Timestamp"
	DefaultMachineIDColumn = "Machine_ID"
	DefaultFailureColumn   = "Failure_Status"
)

// timestampLayouts are tried in order when a cell is not RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Columns names the non-sensor columns in a history CSV. Zero values fall
// back to the defaults. When Sensors is empty, every remaining column is
// treated as a sensor.
type Columns struct {
	Timestamp string
	MachineID string
	Failure   string
	Sensors   []string
}

func (c Columns) withDefaults() Columns {
	if c.Timestamp == "" {
		c.Timestamp = DefaultTimestampColumn
	}
	if c.MachineID == "" {
		c.MachineID = DefaultMachineIDColumn
	}
	if c.Failure == "" {
		c.Failure = DefaultFailureColumn
	}
	return c
}

// LoadHistoryCSV reads a timestamped history CSV into canonical records,
// sorted by machine ID then time key ascending.
//
// Sensor cells that fail to parse as numbers are skipped rather than
// failing the row; the failure column accepts 1/true/yes (case-insensitive)
// as set. A timestamp cell may also be a plain number (runtime hours or row
// sequence), which is used directly as the time key.
func LoadHistoryCSV(path string, cols Columns) ([]types.Record, error) {
	cols = cols.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{cols.Timestamp, cols.MachineID, cols.Failure} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	sensorCols := cols.Sensors
	if len(sensorCols) == 0 {
		for _, name := range header {
			name = strings.TrimSpace(name)
			if name == cols.Timestamp || name == cols.MachineID || name == cols.Failure {
				continue
			}
			sensorCols = append(sensorCols, name)
		}
	}

	var records []types.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		timeKey, err := parseTimeKey(row[index[cols.Timestamp]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		sensors := make(map[string]float64, len(sensorCols))
		for _, sensor := range sensorCols {
			i, ok := index[sensor]
			if !ok || i >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				continue
			}
			sensors[sensor] = v
		}

		records = append(records, types.Record{
			MachineID: strings.TrimSpace(row[index[cols.MachineID]]),
			TimeKey:   timeKey,
			Sensors:   sensors,
			Failure:   parseFailureFlag(row[index[cols.Failure]]),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].MachineID != records[j].MachineID {
			return records[i].MachineID < records[j].MachineID
		}
		return records[i].TimeKey < records[j].TimeKey
	})

	metrics.RecordsLoaded.Add(int64(len(records)))
	return records, nil
}

func parseTimeKey(cell string) (types.TimeKey, error) {
	cell = strings.TrimSpace(cell)

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return types.TimeKeyFromTime(ts), nil
		}
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return types.TimeKey(v), nil
	}
	return 0, fmt.Errorf("could not parse time key %q", cell)
}

func parseFailureFlag(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// LoadReadingsCSV reads a classifier readings CSV, preserving sensor cells
// as strings so missing values remain distinguishable from zeroes. The
// first column set {timestamp, equipment_id} is reserved; everything else
// becomes a sensor value.
func LoadReadingsCSV(path string) ([]types.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening readings CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var readings []types.Reading
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading readings CSV: %w", err)
		}

		r := types.Reading{Values: make(map[string]string)}
		for i, name := range header {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			switch name {
			case "timestamp":
				r.Timestamp = cell
			case "equipment_id":
				r.EquipmentID = cell
			default:
				r.Values[name] = cell
			}
		}
		readings = append(readings, r)
	}

	return readings, nil
}
