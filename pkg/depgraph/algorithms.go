package depgraph

import "slices"

// Validate returns [ErrGraphHasCycle] if the graph contains a directed cycle.
// Cycle detection runs in O(N+E) using depth-first search with
// white/gray/black coloring.
func (g *Graph) Validate() error {
	if g.HasCycle() {
		return ErrGraphHasCycle
	}
	return nil
}

// HasCycle reports whether any directed cycle exists.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return true
			}
		}
	}
	return false
}

// StronglyConnectedComponents returns the strongly connected components using
// Tarjan's algorithm. Each component lists its IDs in insertion order and
// components are ordered by their first member.
func (g *Graph) StronglyConnectedComponents() [][]string {
	pos := g.positions()
	index := make(map[string]int, len(g.nodes))
	low := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	var comps [][]string
	next := 0

	var strongConnect func(v string)
	strongConnect = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.outgoing[v] {
			if _, seen := index[w]; !seen {
				strongConnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sortByPos(comp, pos)
			comps = append(comps, comp)
		}
	}

	for _, id := range g.order {
		if _, seen := index[id]; !seen {
			strongConnect(id)
		}
	}
	slices.SortFunc(comps, func(a, b []string) int { return pos[a[0]] - pos[b[0]] })
	return comps
}

// CyclicNodes returns the set of nodes that lie on a directed cycle: members
// of a strongly connected component with more than one node, plus nodes with
// a self loop.
func (g *Graph) CyclicNodes() map[string]bool {
	cyclic := make(map[string]bool)
	for _, comp := range g.StronglyConnectedComponents() {
		if len(comp) > 1 {
			for _, id := range comp {
				cyclic[id] = true
			}
			continue
		}
		if slices.Contains(g.outgoing[comp[0]], comp[0]) {
			cyclic[comp[0]] = true
		}
	}
	return cyclic
}

// TopologicalSort orders the nodes with Kahn's algorithm so every edge points
// forward. Ready nodes are taken in insertion order. It returns
// [ErrGraphHasCycle] together with the partial order when a cycle blocks the
// sort.
func (g *Graph) TopologicalSort() ([]string, error) {
	pos := g.positions()
	indeg := make(map[string]int, len(g.nodes))
	for _, id := range g.order {
		indeg[id] = len(g.incoming[id])
	}

	var ready []string
	for _, id := range g.order {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var released []string
		for _, child := range g.outgoing[id] {
			indeg[child]--
			if indeg[child] == 0 {
				released = append(released, child)
			}
		}
		ready = append(ready, released...)
		sortByPos(ready, pos)
	}

	if len(order) != len(g.nodes) {
		return order, ErrGraphHasCycle
	}
	return order, nil
}

// Descendants returns every node reachable from the given roots, excluding
// the roots themselves unless they are reachable from another root or lie
// on a cycle.
func (g *Graph) Descendants(roots ...string) map[string]bool {
	seen := make(map[string]bool)
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.outgoing[id] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return seen
}

// WeakComponents returns the connected components of the graph with edge
// directions ignored. Components and their members follow insertion order.
func (g *Graph) WeakComponents() [][]string {
	pos := g.positions()
	seen := make(map[string]bool, len(g.nodes))
	var comps [][]string
	for _, id := range g.order {
		if seen[id] {
			continue
		}
		var comp []string
		queue := []string{id}
		seen[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, nb := range g.outgoing[cur] {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
			for _, nb := range g.incoming[cur] {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sortByPos(comp, pos)
		comps = append(comps, comp)
	}
	return comps
}

// Subgraph returns the graph induced by the given node IDs.
func (g *Graph) Subgraph(ids []string) *Graph {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	sub := New()
	for _, id := range g.order {
		if keep[id] {
			n := *g.nodes[id]
			_ = sub.AddNode(n)
		}
	}
	for _, e := range g.edges {
		if keep[e.From] && keep[e.To] {
			_ = sub.AddEdge(e)
		}
	}
	return sub
}

func (g *Graph) positions() map[string]int {
	pos := make(map[string]int, len(g.order))
	for i, id := range g.order {
		pos[id] = i
	}
	return pos
}

func sortByPos(ids []string, pos map[string]int) {
	slices.SortFunc(ids, func(a, b string) int { return pos[a] - pos[b] })
}
