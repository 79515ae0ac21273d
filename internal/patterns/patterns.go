// Package patterns aggregates discovered failure paths into frequency-ranked
// sequences and converts them into scored warning signs.
package patterns

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dwsmith1983/forewarn/pkg/types"
)

// scoreDivisor normalizes an occurrence count into a [0,1] predictive score.
const scoreDivisor = 10.0

// sequenceKey identifies a sequence by the keys of its states, so sequences
// group by state-wise value equality.
func sequenceKey(seq []types.State) string {
	keys := make([]string, len(seq))
	for i, s := range seq {
		keys[i] = s.Key()
	}
	return strings.Join(keys, "->")
}

// Extract aggregates search paths into failure sequences.
//
// Paths shorter than minLength are dropped. The terminal failure state is
// stripped from each remaining path; identical sequences are grouped with an
// occurrence count and the set of machines (path origins) they were seen in.
// The result is sorted by frequency descending; ties keep first-seen order.
func Extract(paths [][]types.State, minLength int) []types.FailureSequence {
	type aggregate struct {
		sequence []types.State
		count    int
		machines []string
		seen     map[string]struct{}
	}

	byKey := make(map[string]*aggregate)
	var order []string

	for _, path := range paths {
		if len(path) < minLength {
			continue
		}

		sequence := path[:len(path)-1]
		key := sequenceKey(sequence)

		agg, ok := byKey[key]
		if !ok {
			agg = &aggregate{sequence: sequence, seen: make(map[string]struct{})}
			byKey[key] = agg
			order = append(order, key)
		}
		agg.count++

		machineID := path[0].MachineID
		if _, dup := agg.seen[machineID]; !dup {
			agg.seen[machineID] = struct{}{}
			agg.machines = append(agg.machines, machineID)
		}
	}

	sequences := make([]types.FailureSequence, 0, len(order))
	for _, key := range order {
		agg := byKey[key]
		sequences = append(sequences, types.FailureSequence{
			Sequence:  agg.sequence,
			Frequency: agg.count,
			Machines:  agg.machines,
		})
	}

	sort.SliceStable(sequences, func(i, j int) bool {
		return sequences[i].Frequency > sequences[j].Frequency
	})
	return sequences
}

// Rank converts aggregated sequences into scored warning signs, sorted by
// predictive score descending with first-seen order on ties.
//
// The predictive score is the occurrence count over 10, capped at 1.0. The
// false-positive rate is a reserved field that stays 0; the design defines
// no formula for it.
func Rank(sequences []types.FailureSequence) []types.WarningSign {
	signs := make([]types.WarningSign, 0, len(sequences))
	for _, seq := range sequences {
		score := float64(seq.Frequency) / scoreDivisor
		if score > 1.0 {
			score = 1.0
		}
		signs = append(signs, types.WarningSign{
			Pattern:         describe(seq.Sequence),
			PredictiveScore: score,
			Frequency:       seq.Frequency,
		})
	}

	sort.SliceStable(signs, func(i, j int) bool {
		return signs[i].PredictiveScore > signs[j].PredictiveScore
	})
	return signs
}

// describe renders a sequence as its first and last label tuples plus its
// length in steps.
func describe(sequence []types.State) string {
	if len(sequence) == 0 {
		return "Empty sequence"
	}
	first := sequence[0]
	last := sequence[len(sequence)-1]
	return fmt.Sprintf("State transition: (%s) -> (%s) (%d steps)",
		strings.Join(first.Bins, ","), strings.Join(last.Bins, ","), len(sequence))
}
