package search

import (
	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// visitKey identifies a (state, depth) expansion. A state may be re-expanded
// at a different depth, but never twice at the same depth.
type visitKey struct {
	state string
	depth int
}

// BFS enumerates paths from start to goal states in FIFO order.
//
// Expansion stops at maxDepth edges from the start, and the search returns
// early once maxPaths paths have been accepted. A frontier node satisfying
// goal is recorded as a complete path and not expanded further. Results are
// deterministic given the graph's adjacency order.
func BFS(g *graph.Graph, start types.State, goal GoalTest, maxDepth, maxPaths int) [][]types.State {
	metrics.SearchesRun.Add(1)

	var paths [][]types.State
	queue := []node{{state: start, path: []types.State{start}}}
	visited := make(map[visitKey]struct{})

	for len(queue) > 0 && len(paths) < maxPaths {
		n := queue[0]
		queue = queue[1:]
		depth := len(n.path) - 1

		if depth >= maxDepth {
			continue
		}

		key := visitKey{state: n.state.Key(), depth: depth}
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		if goal(n.state) {
			paths = append(paths, n.path)
			continue
		}

		for _, neighbor := range g.Neighbors(n.state) {
			queue = append(queue, node{state: neighbor, path: extend(n.path, neighbor)})
		}
	}

	metrics.PathsDiscovered.Add(int64(len(paths)))
	return paths
}
