package search

import (
	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// DFS enumerates paths from start to goal states depth-first.
//
// A set of states on the active path prevents cycles: a state is skipped
// while it is on the path and released when the search backtracks past it,
// so no returned path contains a repeated state. Neighbors are explored in
// adjacency order. Depth is limited identically to BFS, and exploration does
// not continue past a goal state.
func DFS(g *graph.Graph, start types.State, goal GoalTest, maxDepth int) [][]types.State {
	metrics.SearchesRun.Add(1)

	var paths [][]types.State
	onPath := make(map[string]struct{})

	var visit func(n node)
	visit = func(n node) {
		depth := len(n.path) - 1
		if depth >= maxDepth {
			return
		}

		key := n.state.Key()
		if _, active := onPath[key]; active {
			return
		}

		if goal(n.state) {
			paths = append(paths, n.path)
			return
		}

		onPath[key] = struct{}{}
		for _, neighbor := range g.Neighbors(n.state) {
			visit(node{state: neighbor, path: extend(n.path, neighbor)})
		}
		delete(onPath, key)
	}

	visit(node{state: start, path: []types.State{start}})

	metrics.PathsDiscovered.Add(int64(len(paths)))
	return paths
}
