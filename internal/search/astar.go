package search

import (
	"container/heap"
	"errors"

	"github.com/dwsmith1983/forewarn/internal/graph"
	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// ErrNoPath is returned by AStar when the frontier empties before any goal
// state is reached under the depth bound.
var ErrNoPath = errors.New("no path to a goal state")

// astarNode is a frontier entry in the A* priority queue.
type astarNode struct {
	state types.State
	path  []types.State
	g     float64 // path cost so far, unit edge cost
	f     float64 // g + weighted heuristic estimate
	seq   int     // insertion sequence, tie-break
}

// frontier orders nodes by f ascending; equal f resolves by insertion
// sequence so queue behavior is deterministic rather than dependent on
// incidental heap layout.
type frontier []*astarNode

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) { *q = append(*q, x.(*astarNode)) }

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// AStar finds the lowest-cost path from start to a goal state.
//
// The queue is ordered by g + h·weight, where g counts unit-cost edges and h
// is the supplied heuristic; weight 1.0 is standard A*, larger values bias
// toward greedier expansion. A state is closed the first time it is popped;
// later pops of the same state are ignored. Paths are pruned at maxDepth
// edges. Returns ErrNoPath when the frontier empties first.
func AStar(g *graph.Graph, start types.State, goal GoalTest, h Heuristic, maxDepth int, weight float64) ([]types.State, error) {
	metrics.SearchesRun.Add(1)

	seq := 0
	open := &frontier{{
		state: start,
		path:  []types.State{start},
		f:     h(start, g) * weight,
		seq:   seq,
	}}
	heap.Init(open)

	gScore := map[string]float64{start.Key(): 0}
	closed := make(map[string]struct{})

	for open.Len() > 0 {
		n := heap.Pop(open).(*astarNode)
		key := n.state.Key()

		if _, done := closed[key]; done {
			continue
		}
		closed[key] = struct{}{}

		if len(n.path)-1 >= maxDepth {
			continue
		}

		if goal(n.state) {
			metrics.PathsDiscovered.Add(1)
			return n.path, nil
		}

		for _, neighbor := range g.Neighbors(n.state) {
			nKey := neighbor.Key()
			if _, done := closed[nKey]; done {
				continue
			}

			tentative := gScore[key] + 1
			if best, seen := gScore[nKey]; seen && tentative >= best {
				continue
			}
			gScore[nKey] = tentative

			seq++
			heap.Push(open, &astarNode{
				state: neighbor,
				path:  extend(n.path, neighbor),
				g:     tentative,
				f:     tentative + h(neighbor, g)*weight,
				seq:   seq,
			})
		}
	}

	return nil, ErrNoPath
}
