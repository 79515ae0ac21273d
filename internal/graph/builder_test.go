package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/forewarn/internal/discretize"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

func testBuildConfig() BuildConfig {
	return BuildConfig{
		Schemes: map[string]discretize.Scheme{
			"Temperature": {Bins: []float64{0, 50, 100}, Labels: []string{"low", "high"}},
			"Vibration":   {Bins: []float64{0, 5, 10}, Labels: []string{"calm", "rough"}},
		},
		StateComponents: []string{"Temperature", "Vibration"},
	}
}

func rec(machine string, tk float64, temp, vib float64, failure bool) types.Record {
	return types.Record{
		MachineID: machine,
		TimeKey:   types.TimeKey(tk),
		Sensors:   map[string]float64{"Temperature": temp, "Vibration": vib},
		Failure:   failure,
	}
}

func TestBuild_TemporalMode(t *testing.T) {
	records := []types.Record{
		rec("m1", 1, 10, 1, false), // (low, calm)
		rec("m1", 2, 60, 1, false), // (high, calm)
		rec("m1", 3, 60, 8, true),  // (high, rough) failure
	}

	g := Build(records, testBuildConfig())

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 1, g.FailureCount())

	s1 := types.State{MachineID: "m1", Bins: []string{"low", "calm"}}
	s2 := types.State{MachineID: "m1", Bins: []string{"high", "calm"}}
	s3 := types.State{MachineID: "m1", Bins: []string{"high", "rough"}}

	assert.Equal(t, []types.State{s2}, g.Neighbors(s1))
	assert.Equal(t, []types.State{s3}, g.Neighbors(s2))
	assert.True(t, g.IsFailure(s3))
}

func TestBuild_TemporalModeSortsByTimeKey(t *testing.T) {
	// Records arrive out of order; edges must follow time-key order.
	records := []types.Record{
		rec("m1", 3, 60, 8, true),
		rec("m1", 1, 10, 1, false),
		rec("m1", 2, 60, 1, false),
	}

	g := Build(records, testBuildConfig())

	s1 := types.State{MachineID: "m1", Bins: []string{"low", "calm"}}
	s2 := types.State{MachineID: "m1", Bins: []string{"high", "calm"}}
	assert.Equal(t, []types.State{s2}, g.Neighbors(s1))
}

func TestBuild_ConsecutiveEqualStatesCollapse(t *testing.T) {
	records := []types.Record{
		rec("m1", 1, 10, 1, false),
		rec("m1", 2, 12, 1, false), // same bins as 1: same node, self-loop
		rec("m1", 3, 60, 1, false),
	}

	g := Build(records, testBuildConfig())

	assert.Equal(t, 2, g.NodeCount())
	s1 := types.State{MachineID: "m1", Bins: []string{"low", "calm"}}
	assert.Equal(t, 2, len(g.Neighbors(s1))) // self-loop plus forward edge
	assert.Len(t, g.Records(s1), 2)
}

func TestBuild_MissingSensorRendersUnknown(t *testing.T) {
	records := []types.Record{
		{
			MachineID: "m1",
			TimeKey:   1,
			Sensors:   map[string]float64{"Temperature": 10}, // Vibration absent
			Failure:   false,
		},
	}

	g := Build(records, testBuildConfig())

	nodes := g.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{"low", "unknown"}, nodes[0].Bins)
}

func TestBuild_OutOfRangeSensorRendersUnknown(t *testing.T) {
	records := []types.Record{
		rec("m1", 1, -5, 1, false), // temperature below lowest boundary
	}

	g := Build(records, testBuildConfig())

	nodes := g.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{"unknown", "calm"}, nodes[0].Bins)
}

func TestBuild_SimilarityMode(t *testing.T) {
	// Every machine contributes exactly one record: no temporal signal.
	records := []types.Record{
		rec("m1", 1, 10, 1, false), // (low, calm)
		rec("m2", 1, 60, 1, false), // (high, calm) differs from m1 by one bin
		rec("m3", 1, 60, 8, true),  // (high, rough) differs from m2 by one bin
	}

	g := Build(records, testBuildConfig())

	s1 := types.State{MachineID: "m1", Bins: []string{"low", "calm"}}
	s2 := types.State{MachineID: "m2", Bins: []string{"high", "calm"}}
	s3 := types.State{MachineID: "m3", Bins: []string{"high", "rough"}}

	// Hamming distance 1 pairs (machine ID ignored): s1<->s2, s2<->s3.
	assert.Equal(t, []types.State{s2}, g.Neighbors(s1))
	assert.ElementsMatch(t, []types.State{s1, s3}, g.Neighbors(s2))
	assert.Equal(t, []types.State{s2}, g.Neighbors(s3))
}

func TestBuild_SimilarityModeNeighborCap(t *testing.T) {
	// Ten states all within Hamming distance 1 of each other's first bin.
	var records []types.Record
	for i := 0; i < 10; i++ {
		records = append(records, rec("m"+string(rune('a'+i)), 1, float64(i*10), 1, false))
	}
	cfg := testBuildConfig()
	cfg.Schemes["Temperature"] = discretize.Scheme{
		Bins:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		Labels: []string{"b0", "b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8", "b9"},
	}
	cfg.MaxSimilarityNeighbors = 3

	g := Build(records, cfg)

	for _, node := range g.Nodes() {
		assert.LessOrEqual(t, len(g.Neighbors(node)), 3)
	}
}

func TestBuild_ModeSelectionIsGlobal(t *testing.T) {
	// One machine has two records, the rest have one: temporal mode applies
	// to the whole batch, so single-record machines get no edges at all.
	records := []types.Record{
		rec("m1", 1, 10, 1, false),
		rec("m1", 2, 60, 1, false),
		rec("m2", 1, 60, 8, false),
	}

	g := Build(records, testBuildConfig())

	s2 := types.State{MachineID: "m2", Bins: []string{"high", "rough"}}
	assert.Empty(t, g.Neighbors(s2))
	assert.Equal(t, 1, g.EdgeCount())
}
