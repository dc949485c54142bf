package engine

import (
	"slices"
)

// AcquireOrder decides which of a seat's two forks is locked first.
type AcquireOrder func(left, right *Fork) (first, second *Fork)

// LeftFirst locks the left fork first. A ring where every seat does this
// can deadlock: each actor holds its left fork and waits for its right.
func LeftFirst(left, right *Fork) (first, second *Fork) {
	return left, right
}

// waitGraph maps fork index -> forks awaited while it is held.
type waitGraph map[int][]int

// buildWaitGraph adds one edge per seat from the fork locked first to the
// one locked second. A seat with a single fork adds no edge.
func buildWaitGraph(r *Ring, order AcquireOrder) waitGraph {
	graph := make(waitGraph, r.Len())
	for i := 0; i < r.Len(); i++ {
		left, right := r.Seat(i)
		if graph[left.index] == nil {
			graph[left.index] = []int{}
		}
		if left == right {
			continue
		}
		first, second := order(left, right)
		graph[first.index] = append(graph[first.index], second.index)
	}
	return graph
}

// WaitCycle returns a hold-and-wait cycle of fork indices, first index
// repeated at the end, or nil if the ring cannot deadlock under order.
//
// The algorithm:
//  1. Build the fork wait graph from every seat's acquisition order
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report the first component with more than one fork as a cycle
func WaitCycle(r *Ring, order AcquireOrder) []int {
	graph := buildWaitGraph(r, order)

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			return reconstructCyclePath(scc, graph)
		}
	}
	return nil
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in index order so the result is deterministic.
func tarjanSCC(graph waitGraph) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop its component
		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]int, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath walks edges inside the component from its lowest
// fork until it returns there.
func reconstructCyclePath(scc []int, graph waitGraph) []int {
	members := make(map[int]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := slices.Min(scc)
	current := start
	path := []int{current}
	visited := make(map[int]bool)

	for {
		visited[current] = true

		next := -1
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == -1 {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
