package resolver

import (
	"slices"

	"github.com/erraggy/swaggen/parser"
	"github.com/erraggy/swaggen/swagerrors"
)

// illegal reports whether an edge may not take part in a cycle. Recursion
// through properties and items is legal and only produces links; composition
// and prerequisites cannot be expanded.
func illegal(e Edge) bool {
	return e.Compose || e.Kind == parser.RefOperation
}

// findCycles computes the strongly connected components of the illegal-edge
// subgraph and reports witness cycles until every member of every cyclic
// component is named by at least one cycle. Each cycle error is attached to
// every declaration on it.
func (g *Graph) findCycles() {
	for _, scc := range g.components(illegal) {
		if len(scc) == 1 && !g.selfLoop(scc[0], illegal) {
			continue
		}
		members := make(map[int]bool, len(scc))
		for _, n := range scc {
			members[n] = true
		}
		covered := make(map[int]bool, len(scc))
		for _, start := range scc {
			if covered[start] {
				continue
			}
			path, first := g.witness(start, members, illegal)
			if len(path) == 0 {
				continue
			}
			for _, n := range path {
				covered[n] = true
			}
			g.reportCycle(path, first)
		}
	}
}

func (g *Graph) reportCycle(path []int, first Edge) {
	chain := make([]string, 0, len(path)+1)
	for _, n := range path {
		chain = append(chain, g.ns.Decl(n).Key())
	}
	chain = append(chain, chain[0])

	head := g.ns.Decl(path[0])
	msg := "schema composition cycle"
	if head.Kind == parser.RefOperation {
		msg = "operation requires cycle"
	} else if head.Kind == parser.RefParameter {
		msg = "parameter alias cycle"
	}
	err := &swagerrors.ResolutionError{
		Kind:      swagerrors.KindCycle,
		Spec:      head.Spec,
		Document:  head.Document,
		Reference: first.Token,
		Line:      first.Location.Line,
		Column:    first.Location.Column,
		Chain:     chain,
		Message:   msg,
	}
	g.cycles = append(g.cycles, err)
	for _, n := range path {
		g.errs[n] = append(g.errs[n], err)
	}
}

func (g *Graph) selfLoop(n int, keep func(Edge) bool) bool {
	for _, e := range g.out[n] {
		if keep(e) && e.To == n {
			return true
		}
	}
	return false
}

// witness finds a cycle through start that stays inside members, using a
// depth-first search that follows edges in declaration order. It returns the
// nodes of the cycle starting at start, and the first edge taken.
func (g *Graph) witness(start int, members map[int]bool, keep func(Edge) bool) ([]int, Edge) {
	visited := map[int]bool{start: true}
	var path []int
	var firstEdge Edge

	var dfs func(n int) bool
	dfs = func(n int) bool {
		path = append(path, n)
		for _, e := range g.out[n] {
			if !keep(e) || !members[e.To] {
				continue
			}
			if n == start && len(path) == 1 {
				firstEdge = e
			}
			if e.To == start {
				return true
			}
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			if dfs(e.To) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !dfs(start) {
		return nil, Edge{}
	}
	return path, firstEdge
}

// components returns the strongly connected components of the subgraph made
// of edges accepted by keep, using Tarjan's algorithm. Members of each
// component are sorted, and components are ordered by their smallest member.
func (g *Graph) components(keep func(Edge) bool) [][]int {
	n := len(g.out)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	var out [][]int
	next := 0

	var connect func(v int)
	connect = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range g.out[v] {
			if !keep(e) {
				continue
			}
			w := e.To
			if index[w] < 0 {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
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
			slices.Sort(scc)
			out = append(out, scc)
		}
	}

	for v := range n {
		if index[v] < 0 {
			connect(v)
		}
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

// recursive returns the schema declarations that take part in any cycle of
// schema references. Those stay linked when references are inlined.
func (g *Graph) recursive() map[int]bool {
	schemaEdge := func(e Edge) bool {
		return e.Kind == parser.RefSchema && g.ns.Decl(e.From).Kind == parser.RefSchema
	}
	out := make(map[int]bool)
	for _, scc := range g.components(schemaEdge) {
		if len(scc) == 1 && !g.selfLoop(scc[0], schemaEdge) {
			continue
		}
		for _, n := range scc {
			out[n] = true
		}
	}
	return out
}
