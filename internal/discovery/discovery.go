// Package discovery orchestrates the failure-pattern pipeline: pick start
// states, search the transition graph for paths into failure states, then
// aggregate and rank the surviving prefixes into warning signs.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dwsmith1983/forewarn/internal/config"
	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/internal/patterns"
	"github.com/dwsmith1983/forewarn/internal/search"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Search bound defaults. Depth is clamped so a generous configured
// maxDepth cannot blow up the per-start breadth-first frontier.
const (
	DefaultPathsPerStart = 5
	DefaultMaxTotalPaths = 100
	DefaultStartSample   = 100
	searchDepthCeiling   = 10
)

// Search algorithm selectors for Options.Algorithm.
const (
	AlgorithmBFS   = "bfs"
	AlgorithmAStar = "astar"
)

// Options tune a discovery pass. The zero value gets sensible defaults;
// Rand must be set only when the fallback start-state sample can trigger
// (no failure predecessors in the graph).
type Options struct {
	// Algorithm picks the per-start search: breadth-first (default, up to
	// PathsPerStart paths per start) or A* (the single best path per start,
	// using the configured heuristic and weight).
	Algorithm string

	PathsPerStart int
	MaxTotalPaths int

	// StartSample bounds the random fallback sample of start states used
	// when no failure state has a non-failure predecessor.
	StartSample int

	// Workers > 1 searches start states concurrently. Results are merged
	// in start-state order either way, so the output is identical.
	Workers int

	Rand   *rand.Rand
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Algorithm == "" {
		o.Algorithm = AlgorithmBFS
	}
	if o.PathsPerStart == 0 {
		o.PathsPerStart = DefaultPathsPerStart
	}
	if o.MaxTotalPaths == 0 {
		o.MaxTotalPaths = DefaultMaxTotalPaths
	}
	if o.StartSample == 0 {
		o.StartSample = DefaultStartSample
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Result bundles the artifacts of one full discovery run.
type Result struct {
	Graph        *graph.Graph
	Paths        [][]types.State
	Sequences    []types.FailureSequence
	WarningSigns []types.WarningSign
}

// Discover searches the graph for paths from candidate start states into
// failure states. Start states are the non-failure predecessors of failure
// states; when there are none, a bounded random sample of non-failure
// states stands in so sparse graphs still produce candidates.
func Discover(ctx context.Context, g *graph.Graph, params config.SearchParams, opts Options) ([][]types.State, error) {
	opts = opts.withDefaults()

	starts := startStates(g, opts)
	if len(starts) == 0 {
		opts.Logger.Info("no candidate start states, skipping search")
		return nil, nil
	}

	searchFrom, err := startSearcher(g, params, opts)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("searching for failure paths",
		"starts", len(starts), "algorithm", opts.Algorithm, "workers", opts.Workers)

	perStart := make([][][]types.State, len(starts))
	if opts.Workers > 1 {
		if err := searchParallel(ctx, starts, searchFrom, opts, perStart); err != nil {
			return nil, err
		}
	} else {
		for i, start := range starts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perStart[i] = searchFrom(start)
		}
	}

	// Merge in start order and enforce the global cap.
	var paths [][]types.State
	for _, found := range perStart {
		for _, p := range found {
			if len(paths) >= opts.MaxTotalPaths {
				metrics.PathCapReached.Add(1)
				opts.Logger.Info("global path cap reached", "cap", opts.MaxTotalPaths)
				return paths, nil
			}
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// startSearcher resolves the per-start search function for the configured
// algorithm. The returned function is safe for concurrent use: each call
// keeps its own bookkeeping.
func startSearcher(g *graph.Graph, params config.SearchParams, opts Options) (func(types.State) [][]types.State, error) {
	depth := params.MaxDepth
	if depth > searchDepthCeiling {
		depth = searchDepthCeiling
	}
	goal := search.FailureGoal(g)

	switch opts.Algorithm {
	case AlgorithmBFS:
		return func(start types.State) [][]types.State {
			return search.BFS(g, start, goal, depth, opts.PathsPerStart)
		}, nil
	case AlgorithmAStar:
		name := params.Heuristic
		if name == "" {
			name = search.HeuristicTimeToFailure
		}
		h, err := search.HeuristicByName(name)
		if err != nil {
			return nil, err
		}
		weight := params.AStarWeight
		if weight == 0 {
			weight = 1.0
		}
		return func(start types.State) [][]types.State {
			path, err := search.AStar(g, start, goal, h, depth, weight)
			if err != nil {
				// Exhausted frontier is not an error for discovery.
				return nil
			}
			return [][]types.State{path}
		}, nil
	default:
		return nil, fmt.Errorf("unknown search algorithm %q", opts.Algorithm)
	}
}

// searchParallel fans start states out over an errgroup. Each search keeps
// private bookkeeping; only the shared found-so-far counter is
// synchronized, and it is advisory: results are still merged in start
// order afterwards, so extra paths found past the cap are simply dropped.
func searchParallel(ctx context.Context, starts []types.State, searchFrom func(types.State) [][]types.State, opts Options, perStart [][][]types.State) error {
	var (
		mu    sync.Mutex
		found int
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i, start := range starts {
		i, start := i, start
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mu.Lock()
			done := found >= opts.MaxTotalPaths
			mu.Unlock()
			if done {
				return nil
			}

			result := searchFrom(start)

			mu.Lock()
			found += len(result)
			mu.Unlock()
			perStart[i] = result
			return nil
		})
	}
	return eg.Wait()
}

// startStates returns the non-failure predecessors of failure states, in
// graph insertion order without duplicates. When empty, it falls back to a
// random sample of non-failure states.
func startStates(g *graph.Graph, opts Options) []types.State {
	seen := make(map[string]struct{})
	var starts []types.State
	for _, failure := range g.FailureStates() {
		for _, pred := range g.Predecessors(failure) {
			if g.IsFailure(pred) {
				continue
			}
			if _, ok := seen[pred.Key()]; ok {
				continue
			}
			seen[pred.Key()] = struct{}{}
			starts = append(starts, pred)
		}
	}
	if len(starts) > 0 {
		return starts
	}

	var normal []types.State
	for _, s := range g.Nodes() {
		if !g.IsFailure(s) {
			normal = append(normal, s)
		}
	}
	if len(normal) == 0 {
		return nil
	}
	if len(normal) <= opts.StartSample {
		return normal
	}
	if opts.Rand == nil {
		// No randomness source; a deterministic prefix keeps the run bounded.
		return normal[:opts.StartSample]
	}
	sample := make([]types.State, 0, opts.StartSample)
	for _, idx := range opts.Rand.Perm(len(normal))[:opts.StartSample] {
		sample = append(sample, normal[idx])
	}
	return sample
}

// Run executes the full pipeline over a record batch: build the transition
// graph, discover failure paths, extract recurring sequences, and rank them
// into warning signs.
func Run(ctx context.Context, records []types.Record, buildCfg graph.BuildConfig, params config.SearchParams, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	g := graph.Build(records, buildCfg)
	opts.Logger.Info("transition graph built",
		"nodes", g.NodeCount(), "edges", g.EdgeCount(), "failures", g.FailureCount())

	paths, err := Discover(ctx, g, params, opts)
	if err != nil {
		return nil, err
	}

	sequences := patterns.Extract(paths, params.MinPatternLength)
	signs := patterns.Rank(sequences)
	opts.Logger.Info("discovery complete",
		"paths", len(paths), "sequences", len(sequences), "warning_signs", len(signs))

	return &Result{
		Graph:        g,
		Paths:        paths,
		Sequences:    sequences,
		WarningSigns: signs,
	}, nil
}
