package ingest

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/forewarn/pkg/types"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHistoryCSV(t *testing.T) {
	path := writeCSV(t, `Timestamp,Machine_ID,Temperature,Vibration_Level,Failure_Status
2024-01-01 00:00:00,m1,20.5,1.0,0
2024-01-01 01:00:00,m1,80.2,8.5,1
2024-01-01 00:30:00,m2,45.0,2.2,no
`)

	records, err := LoadHistoryCSV(path, Columns{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Sorted by machine then time key.
	assert.Equal(t, "m1", records[0].MachineID)
	assert.Equal(t, "m1", records[1].MachineID)
	assert.Equal(t, "m2", records[2].MachineID)
	assert.Less(t, records[0].TimeKey, records[1].TimeKey)

	assert.Equal(t, 20.5, records[0].Sensors["Temperature"])
	assert.Equal(t, 1.0, records[0].Sensors["Vibration_Level"])
	assert.False(t, records[0].Failure)
	assert.True(t, records[1].Failure)
	assert.False(t, records[2].Failure)
}

func TestLoadHistoryCSV_NumericTimeKey(t *testing.T) {
	path := writeCSV(t, `Timestamp,Machine_ID,Temperature,Failure_Status
10.5,m1,20,0
3.25,m1,30,0
`)

	records, err := LoadHistoryCSV(path, Columns{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, types.TimeKey(3.25), records[0].TimeKey)
	assert.Equal(t, types.TimeKey(10.5), records[1].TimeKey)
}

func TestLoadHistoryCSV_SkipsUnparsableSensorCells(t *testing.T) {
	path := writeCSV(t, `Timestamp,Machine_ID,Temperature,Vibration_Level,Failure_Status
1,m1,not-a-number,4.2,0
`)

	records, err := LoadHistoryCSV(path, Columns{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	_, hasTemp := records[0].Sensors["Temperature"]
	assert.False(t, hasTemp)
	assert.Equal(t, 4.2, records[0].Sensors["Vibration_Level"])
}

func TestLoadHistoryCSV_MissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, `Timestamp,Temperature
1,20
`)

	_, err := LoadHistoryCSV(path, Columns{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Machine_ID")
}

func TestLoadHistoryCSV_CustomColumns(t *testing.T) {
	path := writeCSV(t, `ts,machine,temp,failed
1,m1,20,yes
`)

	records, err := LoadHistoryCSV(path, Columns{
		Timestamp: "ts",
		MachineID: "machine",
		Failure:   "failed",
		Sensors:   []string{"temp"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Failure)
	assert.Equal(t, 20.0, records[0].Sensors["temp"])
}

func TestLoadReadingsCSV(t *testing.T) {
	path := writeCSV(t, `timestamp,equipment_id,temperature,vibration,pressure
2024-01-01T00:00:00,pump-1,72.5,,30
`)

	readings, err := LoadReadingsCSV(path)
	require.NoError(t, err)
	require.Len(t, readings, 1)

	assert.Equal(t, "pump-1", readings[0].EquipmentID)
	assert.Equal(t, "72.5", readings[0].Values["temperature"])
	assert.Equal(t, "", readings[0].Values["vibration"]) // missing stays empty
	assert.Equal(t, "30", readings[0].Values["pressure"])
}

func TestSample_PassThroughUnderCap(t *testing.T) {
	records := []types.Record{{MachineID: "m1"}, {MachineID: "m2"}}
	rnd := rand.New(rand.NewSource(1))

	assert.Equal(t, records, Sample(records, 10, rnd))
}

func TestSample_FailureBiased(t *testing.T) {
	var records []types.Record
	for i := 0; i < 90; i++ {
		records = append(records, types.Record{MachineID: "normal", TimeKey: types.TimeKey(i)})
	}
	for i := 0; i < 10; i++ {
		records = append(records, types.Record{MachineID: "fail", TimeKey: types.TimeKey(i), Failure: true})
	}

	rnd := rand.New(rand.NewSource(42))
	sampled := Sample(records, 20, rnd)

	require.Len(t, sampled, 20)
	failures := 0
	for _, rec := range sampled {
		if rec.Failure {
			failures++
		}
	}
	// All 10 failures fit under the half-cap quota and must survive.
	assert.Equal(t, 10, failures)
}

func TestSample_Deterministic(t *testing.T) {
	var records []types.Record
	for i := 0; i < 50; i++ {
		records = append(records, types.Record{TimeKey: types.TimeKey(i), Failure: i%5 == 0})
	}

	a := Sample(records, 10, rand.New(rand.NewSource(7)))
	b := Sample(records, 10, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}
