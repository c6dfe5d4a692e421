package graph

import W "github.com/kvasirlab/conflux/utils/worklist"

type traversalFunc[T any] func(node T) (stop bool)

// Performs a breadth-first search from the provided start nodes, calling the
// provided function (f) for every reachable node, stopping early if f returns
// true.
// Returns whether the search stopped early (as a result of f returning true).
func (G Graph[T]) BFSV(f traversalFunc[T], starts ...T) bool {
	visited := G.mapFactory()
	for _, start := range starts {
		visited.Set(start, true)
	}

	done := false
	W.StartV(starts, func(node T, add func(T)) {
		if done || f(node) {
			done = true
			return
		}

		for _, next := range G.Edges(node) {
			if _, found := visited.Get(next); !found {
				visited.Set(next, true)
				add(next)
			}
		}
	})

	return done
}

// Performs a breadth-first search from the provided start node, calling the
// provided function (f) for every reachable node, stopping early if f returns
// true.
// Returns whether the search stopped early (as a result of f returning true).
func (G Graph[T]) BFS(start T, f traversalFunc[T]) bool {
	return G.BFSV(f, start)
}

// Postorder computes a depth-first postorder of the subgraph reachable from
// the provided start node. Back-edges are ignored, so the order is only a
// topological order when the reachable subgraph is acyclic.
func (G Graph[T]) Postorder(start T) (order []T) {
	visited := G.mapFactory()

	var rec func(T)
	rec = func(node T) {
		visited.Set(node, true)
		for _, next := range G.Edges(node) {
			if _, found := visited.Get(next); !found {
				rec(next)
			}
		}
		order = append(order, node)
	}

	rec(start)
	return
}

// ReversePostorderRanks assigns each node reachable from start its rank in a
// reverse postorder traversal. Lower ranks precede higher ranks in any
// topological order of the acyclic part of the graph, which makes the ranks
// a good priority for worklist scheduling.
func (G Graph[T]) ReversePostorderRanks(start T) Mapper[T] {
	post := G.Postorder(start)
	ranks := G.mapFactory()
	for i, node := range post {
		ranks.Set(node, len(post)-1-i)
	}
	return ranks
}
