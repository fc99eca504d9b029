package dag

import "sort"

// TopoOrder orders every node of the adjacency map exactly once using
// Kahn's algorithm. The worklist is seeded and drained deterministically
// so the same graph always yields the same order. Nodes left inside
// residual cycles are appended in sorted order after the acyclic prefix:
// evaluation still proceeds through them, accepting that they may read
// not-yet-settled upstream values.
func TopoOrder(adjacency map[string][]string) []string {
	indeg := make(map[string]int, len(adjacency))
	for n := range adjacency {
		indeg[n] = 0
	}
	for _, outs := range adjacency {
		for _, v := range outs {
			indeg[v]++
		}
	}

	queue := make([]string, 0, len(adjacency))
	for n, d := range indeg {
		if d == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(adjacency))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)
		for _, v := range adjacency[u] {
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(order) < len(adjacency) {
		ordered := make(map[string]bool, len(order))
		for _, n := range order {
			ordered[n] = true
		}
		var rest []string
		for n := range adjacency {
			if !ordered[n] {
				rest = append(rest, n)
			}
		}
		sort.Strings(rest)
		order = append(order, rest...)
	}
	return order
}

// TopoLevels assigns a topological rank to each node for layered graph
// layout. Residual cycle nodes all land one level past the deepest
// acyclic node.
func TopoLevels(adjacency map[string][]string) map[string]int {
	indeg := make(map[string]int, len(adjacency))
	for n := range adjacency {
		indeg[n] = 0
	}
	for _, outs := range adjacency {
		for _, v := range outs {
			indeg[v]++
		}
	}

	var queue []string
	level := make(map[string]int, len(adjacency))
	for n, d := range indeg {
		if d == 0 {
			queue = append(queue, n)
			level[n] = 0
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range adjacency[u] {
			indeg[v]--
			if indeg[v] == 0 {
				level[v] = level[u] + 1
				queue = append(queue, v)
			}
		}
	}

	if len(level) < len(adjacency) {
		max := 0
		for _, l := range level {
			if l > max {
				max = l
			}
		}
		for n := range adjacency {
			if _, ok := level[n]; !ok {
				level[n] = max + 1
			}
		}
	}
	return level
}
