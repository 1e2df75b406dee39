package planner

import (
	"sort"

	"github.com/flanksource/hdl-checker/models"
)

// topoSort orders nodes so that every dst in adj[src] (a dependency of
// src) appears before src. Cycles are broken by removing the
// lexicographically greatest (src,dst) edge in the cycle, repeated
// until the graph is acyclic (spec §4.3 rule 3); ties are broken by
// path string alone so the result is stable. Libraries play no part
// in the tie-break, since nodes carry no library.
func topoSort(nodes map[string]models.Path, adj map[string]map[string]bool) ([]models.Path, []BrokenEdge) {
	// Copy adjacency so we can mutate it while breaking cycles.
	work := make(map[string]map[string]bool, len(adj))
	for src, dsts := range adj {
		work[src] = make(map[string]bool, len(dsts))
		for dst := range dsts {
			work[src][dst] = true
		}
	}

	var broken []BrokenEdge
	for {
		cycle := findCycle(nodes, work)
		if cycle == nil {
			break
		}
		// Remove the lexicographically greatest (src,dst) edge among
		// the cycle's edges.
		var worst edge
		has := false
		for i := 0; i < len(cycle); i++ {
			src := cycle[i]
			dst := cycle[(i+1)%len(cycle)]
			if work[src] == nil || !work[src][dst] {
				continue
			}
			e := edge{src, dst}
			if !has || (e.src > worst.src) || (e.src == worst.src && e.dst > worst.dst) {
				worst = e
				has = true
			}
		}
		if !has {
			break
		}
		delete(work[worst.src], worst.dst)
		broken = append(broken, BrokenEdge{Src: nodes[worst.src], Dst: nodes[worst.dst]})
	}

	order := kahnSort(nodes, work)
	return order, broken
}

// findCycle returns one cycle (as a slice of node keys) if the graph
// has one, else nil. DFS-based; deterministic traversal order so
// repeated calls on the same graph find the same cycle.
func findCycle(nodes map[string]models.Path, adj map[string]map[string]bool) []string {
	keys := sortedKeys(nodes)

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))
	var stack []string

	var dfs func(n string) []string
	dfs = func(n string) []string {
		color[n] = gray
		stack = append(stack, n)

		dsts := sortedSet(adj[n])
		for _, d := range dsts {
			switch color[d] {
			case white:
				if cyc := dfs(d); cyc != nil {
					return cyc
				}
			case gray:
				// Found a back-edge to d; extract the cycle from stack.
				idx := -1
				for i, s := range stack {
					if s == d {
						idx = i
						break
					}
				}
				if idx >= 0 {
					return append([]string(nil), stack[idx:]...)
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[n] = black
		return nil
	}

	for _, k := range keys {
		if color[k] == white {
			if cyc := dfs(k); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// kahnSort performs a stable topological sort: dependencies (adj
// targets) before dependents, ties broken by path string.
func kahnSort(nodes map[string]models.Path, adj map[string]map[string]bool) []models.Path {
	// A node is ready to emit once every path it depends on (adj[node])
	// has already been emitted.
	remaining := make(map[string]map[string]bool, len(nodes))
	for k := range nodes {
		remaining[k] = map[string]bool{}
		for d := range adj[k] {
			remaining[k][d] = true
		}
	}

	var order []models.Path
	emitted := make(map[string]bool, len(nodes))

	for len(emitted) < len(nodes) {
		var ready []string
		for k := range nodes {
			if emitted[k] {
				continue
			}
			if len(remaining[k]) == 0 {
				ready = append(ready, k)
			}
		}
		if len(ready) == 0 {
			// Should not happen once cycles are broken; emit remaining
			// nodes in stable order rather than fail.
			for k := range nodes {
				if !emitted[k] {
					ready = append(ready, k)
				}
			}
		}

		sort.Slice(ready, func(i, j int) bool {
			return pathSortKey(nodes[ready[i]]) < pathSortKey(nodes[ready[j]])
		})

		next := ready[0]
		order = append(order, nodes[next])
		emitted[next] = true
		for k := range remaining {
			delete(remaining[k], next)
		}
	}

	return order
}

func pathSortKey(p models.Path) string {
	return p.String()
}

func sortedKeys(nodes map[string]models.Path) []string {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
