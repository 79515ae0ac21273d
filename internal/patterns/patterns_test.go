package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/forewarn/pkg/types"
)

func st(machine string, bins ...string) types.State {
	return types.State{MachineID: machine, Bins: bins}
}

func TestExtract_AggregatesAndStripsFailureState(t *testing.T) {
	a := st("m1", "a")
	b := st("m1", "b")
	c := st("m1", "c") // terminal failure state

	paths := [][]types.State{
		{a, b, c},
		{a, b, c},
		{a, b, c},
		{a, c},
	}

	sequences := Extract(paths, 2)

	require.Len(t, sequences, 2)
	assert.Equal(t, []types.State{a, b}, sequences[0].Sequence)
	assert.Equal(t, 3, sequences[0].Frequency)
	assert.Equal(t, []types.State{a}, sequences[1].Sequence)
	assert.Equal(t, 1, sequences[1].Frequency)
}

func TestExtract_DropsShortPaths(t *testing.T) {
	a := st("m1", "a")
	c := st("m1", "c")

	sequences := Extract([][]types.State{{a, c}, {c}}, 3)
	assert.Empty(t, sequences)
}

func TestExtract_TracksMachines(t *testing.T) {
	paths := [][]types.State{
		{st("m1", "a"), st("m1", "f")},
		{st("m2", "a"), st("m2", "f")},
	}

	sequences := Extract(paths, 2)

	require.Len(t, sequences, 2)
	assert.Equal(t, []string{"m1"}, sequences[0].Machines)
	assert.Equal(t, []string{"m2"}, sequences[1].Machines)
}

func TestExtract_SortsByFrequencyStable(t *testing.T) {
	a := st("m1", "a")
	b := st("m1", "b")
	f := st("m1", "f")

	paths := [][]types.State{
		{a, f},         // seq [a], freq 1 (first seen)
		{b, f},         // seq [b], freq 1
		{a, b, f},      // seq [a b], freq 2
		{a, b, f},
	}

	sequences := Extract(paths, 2)

	require.Len(t, sequences, 3)
	assert.Equal(t, 2, sequences[0].Frequency)
	// Frequency ties keep first-seen order.
	assert.Equal(t, []types.State{a}, sequences[1].Sequence)
	assert.Equal(t, []types.State{b}, sequences[2].Sequence)
}

func TestRank_ScoresAndSorts(t *testing.T) {
	sequences := []types.FailureSequence{
		{Sequence: []types.State{st("m1", "low"), st("m1", "high")}, Frequency: 5},
		{Sequence: []types.State{st("m2", "high")}, Frequency: 15},
	}

	signs := Rank(sequences)

	require.Len(t, signs, 2)
	// Frequency 15 caps at 1.0 and outranks frequency 5 at 0.5.
	assert.Equal(t, 1.0, signs[0].PredictiveScore)
	assert.Equal(t, 15, signs[0].Frequency)
	assert.Equal(t, 0.5, signs[1].PredictiveScore)
	assert.GreaterOrEqual(t, signs[0].PredictiveScore, signs[1].PredictiveScore)
}

func TestRank_Description(t *testing.T) {
	signs := Rank([]types.FailureSequence{{
		Sequence:  []types.State{st("m1", "low", "calm"), st("m1", "high", "rough")},
		Frequency: 1,
	}})

	require.Len(t, signs, 1)
	assert.Equal(t, "State transition: (low,calm) -> (high,rough) (2 steps)", signs[0].Pattern)
	assert.Equal(t, 0.1, signs[0].PredictiveScore)
	assert.Zero(t, signs[0].FalsePositiveRate)
}

func TestRank_EmptySequence(t *testing.T) {
	signs := Rank([]types.FailureSequence{{Frequency: 1}})

	require.Len(t, signs, 1)
	assert.Equal(t, "Empty sequence", signs[0].Pattern)
}
