// Package graph builds and holds the directed state-transition graph that
// the search engine traverses. Nodes are discretized equipment states, edges
// are observed (temporal) or inferred (similarity) transitions, and a subset
// of nodes is marked as failure states.
package graph

import (
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Graph is a set of unique states with a directed adjacency relation.
// Node identity is structural: states are deduplicated by State.Key, so two
// independently constructed equal states collapse into one node. Iteration
// order over nodes and neighbors is insertion order, which keeps builds and
// traversals reproducible given the same input ordering.
//
// A Graph is mutable during construction and must be treated as read-only
// once Build returns; concurrent reads are then safe.
type Graph struct {
	nodes    map[string]types.State
	order    []string
	adj      map[string][]string
	adjSet   map[string]map[string]struct{}
	failures map[string]struct{}
	records  map[string][]types.Record
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]types.State),
		adj:      make(map[string][]string),
		adjSet:   make(map[string]map[string]struct{}),
		failures: make(map[string]struct{}),
		records:  make(map[string][]types.Record),
	}
}

// AddNode registers a state, returning its canonical copy. Re-adding an
// equal state is a no-op that returns the already registered node.
func (g *Graph) AddNode(s types.State) types.State {
	key := s.Key()
	if existing, ok := g.nodes[key]; ok {
		return existing
	}
	g.nodes[key] = s
	g.order = append(g.order, key)
	g.adj[key] = nil
	g.adjSet[key] = make(map[string]struct{})
	return s
}

// AddEdge adds a directed edge, implicitly registering either endpoint that
// is not yet a node. Duplicate edges are suppressed; self-loops are allowed.
func (g *Graph) AddEdge(from, to types.State) {
	g.AddNode(from)
	g.AddNode(to)
	fromKey, toKey := from.Key(), to.Key()
	if _, dup := g.adjSet[fromKey][toKey]; dup {
		return
	}
	g.adjSet[fromKey][toKey] = struct{}{}
	g.adj[fromKey] = append(g.adj[fromKey], toKey)
}

// MarkFailure marks a state as a failure state, registering it if needed.
func (g *Graph) MarkFailure(s types.State) {
	g.AddNode(s)
	g.failures[s.Key()] = struct{}{}
}

// AttachRecord associates a canonical record with the state it produced.
func (g *Graph) AttachRecord(s types.State, r types.Record) {
	g.AddNode(s)
	g.records[s.Key()] = append(g.records[s.Key()], r)
}

// Neighbors returns the successor states of s in edge insertion order.
func (g *Graph) Neighbors(s types.State) []types.State {
	keys := g.adj[s.Key()]
	out := make([]types.State, len(keys))
	for i, k := range keys {
		out[i] = g.nodes[k]
	}
	return out
}

// Predecessors returns every state with a direct edge into s, in node
// insertion order.
func (g *Graph) Predecessors(s types.State) []types.State {
	target := s.Key()
	var out []types.State
	for _, key := range g.order {
		if _, ok := g.adjSet[key][target]; ok {
			out = append(out, g.nodes[key])
		}
	}
	return out
}

// IsFailure reports whether s is marked as a failure state.
func (g *Graph) IsFailure(s types.State) bool {
	_, ok := g.failures[s.Key()]
	return ok
}

// Nodes returns all states in insertion order.
func (g *Graph) Nodes() []types.State {
	out := make([]types.State, len(g.order))
	for i, key := range g.order {
		out[i] = g.nodes[key]
	}
	return out
}

// FailureStates returns all failure states in node insertion order.
func (g *Graph) FailureStates() []types.State {
	var out []types.State
	for _, key := range g.order {
		if _, ok := g.failures[key]; ok {
			out = append(out, g.nodes[key])
		}
	}
	return out
}

// Records returns the canonical records that produced state s.
func (g *Graph) Records(s types.State) []types.Record {
	return g.records[s.Key()]
}

// NodeCount returns the number of unique states.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.adj {
		n += len(targets)
	}
	return n
}

// FailureCount returns the number of failure states.
func (g *Graph) FailureCount() int { return len(g.failures) }
