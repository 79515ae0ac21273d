// Package search implements graph traversal strategies used to enumerate
// paths that terminate in failure states: breadth-first, depth-first, and
// heuristic best-first (A*).
package search

import (
	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// GoalTest reports whether a state satisfies the search goal. Discovery uses
// "is a failure state", but any predicate works.
type GoalTest func(types.State) bool

// FailureGoal returns the standard goal predicate for g.
func FailureGoal(g *graph.Graph) GoalTest {
	return g.IsFailure
}

// node tracks one frontier entry: the current state and the full path from
// the start state to it.
type node struct {
	state types.State
	path  []types.State
}

// extend returns a new path with next appended, without aliasing the
// original backing array.
func extend(path []types.State, next types.State) []types.State {
	out := make([]types.State, len(path), len(path)+1)
	copy(out, path)
	return append(out, next)
}
