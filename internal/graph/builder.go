package graph

import (
	"sort"

	"github.com/dwsmith1983/forewarn/internal/discretize"
	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// DefaultMaxSimilarityNeighbors caps similarity-mode edges per source state
// to keep graph density bounded on one-record-per-machine batches.
const DefaultMaxSimilarityNeighbors = 20

// BuildConfig configures discretization and state composition for Build.
type BuildConfig struct {
	// Schemes maps sensor names to their binning schemes.
	Schemes map[string]discretize.Scheme

	// StateComponents lists the sensors whose bin labels compose a state,
	// in tuple order.
	StateComponents []string

	// MaxSimilarityNeighbors caps edges added per source state in
	// similarity mode. Zero means DefaultMaxSimilarityNeighbors.
	MaxSimilarityNeighbors int
}

// Build constructs the state graph from a batch of canonical records.
//
// Records are grouped by machine and ordered by time key. Every record is
// discretized into a state (absent or out-of-range components render as
// "unknown"), equal states collapse into one node, each record is attached
// to its node, and records with the failure flag set mark their node as a
// failure state.
//
// Edge construction strategy is chosen once for the whole batch: temporal
// mode when at least one machine contributes more than one record, otherwise
// similarity mode. In similarity mode the accepted neighbor set per source
// depends on node enumeration order; the insertion-ordered registry makes
// that deterministic for a given input ordering.
func Build(records []types.Record, cfg BuildConfig) *Graph {
	g := New()

	byMachine := groupByMachine(records)

	temporal := false
	for _, recs := range byMachine.groups {
		if len(recs) > 1 {
			temporal = true
			break
		}
	}

	// Register nodes machine by machine, keeping each machine's
	// time-ordered state sequence for temporal edges.
	sequences := make([][]types.State, 0, len(byMachine.ids))
	for _, machineID := range byMachine.ids {
		recs := byMachine.groups[machineID]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].TimeKey < recs[j].TimeKey })

		seq := make([]types.State, 0, len(recs))
		for _, rec := range recs {
			state := g.AddNode(stateOf(rec, cfg))
			g.AttachRecord(state, rec)
			if rec.Failure {
				g.MarkFailure(state)
			}
			seq = append(seq, state)
		}
		sequences = append(sequences, seq)
	}

	if temporal {
		for _, seq := range sequences {
			for i := 0; i < len(seq)-1; i++ {
				g.AddEdge(seq[i], seq[i+1])
			}
		}
	} else {
		buildSimilarityEdges(g, cfg.MaxSimilarityNeighbors)
	}

	metrics.GraphNodesBuilt.Add(int64(g.NodeCount()))
	metrics.GraphEdgesBuilt.Add(int64(g.EdgeCount()))
	return g
}

// stateOf discretizes a record into its state under cfg's component order.
func stateOf(rec types.Record, cfg BuildConfig) types.State {
	labels := discretize.Discretize(rec.Sensors, cfg.Schemes)
	bins := make([]string, len(cfg.StateComponents))
	for i, sensor := range cfg.StateComponents {
		if label, ok := labels[sensor]; ok {
			bins[i] = label
		} else {
			bins[i] = discretize.UnknownLabel
		}
	}
	return types.State{MachineID: rec.MachineID, Bins: bins}
}

// buildSimilarityEdges links states whose label tuples differ in exactly one
// position, ignoring machine ID, capping accepted neighbors per source.
func buildSimilarityEdges(g *Graph, maxNeighbors int) {
	if maxNeighbors <= 0 {
		maxNeighbors = DefaultMaxSimilarityNeighbors
	}
	nodes := g.Nodes()
	for _, from := range nodes {
		found := 0
		for _, to := range nodes {
			if from.Equal(to) {
				continue
			}
			if found >= maxNeighbors {
				break
			}
			if differByOneBin(from, to) {
				g.AddEdge(from, to)
				found++
			}
		}
	}
}

// differByOneBin reports whether two states' label tuples have Hamming
// distance exactly 1. Machine IDs are not compared.
func differByOneBin(a, b types.State) bool {
	if len(a.Bins) != len(b.Bins) {
		return false
	}
	diffs := 0
	for i := range a.Bins {
		if a.Bins[i] != b.Bins[i] {
			diffs++
			if diffs > 1 {
				return false
			}
		}
	}
	return diffs == 1
}

// machineGroups holds per-machine record groups plus first-seen machine
// order, so builds stay deterministic for a given input ordering.
type machineGroups struct {
	ids    []string
	groups map[string][]types.Record
}

func groupByMachine(records []types.Record) machineGroups {
	mg := machineGroups{groups: make(map[string][]types.Record)}
	for _, rec := range records {
		if _, ok := mg.groups[rec.MachineID]; !ok {
			mg.ids = append(mg.ids, rec.MachineID)
		}
		mg.groups[rec.MachineID] = append(mg.groups[rec.MachineID], rec)
	}
	return mg
}
