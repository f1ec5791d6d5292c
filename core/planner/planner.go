package planner

import (
	"sort"

	"content-sync/core/graph"
)

// Component is one strongly connected component of the dependency graph.
type Component struct {
	// Members are the component identities in first-seen order.
	Members []string `json:"members"`
	// Cyclic is true when the members form a real cycle (several members or a self-edge).
	Cyclic bool `json:"cyclic"`
}

// Plan is an application order over a dependency graph.
// For every edge A->B across components, B is ordered before A.
type Plan struct {
	order      []string
	components []Component
	position   map[string]int
}

// Order returns the identities in application order.
func (p *Plan) Order() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Components returns the components in application order.
func (p *Plan) Components() []Component {
	out := make([]Component, len(p.components))
	copy(out, p.components)
	return out
}

// Cycles returns only the cyclic components.
func (p *Plan) Cycles() []Component {
	var out []Component
	for _, c := range p.components {
		if c.Cyclic {
			out = append(out, c)
		}
	}
	return out
}

// Position returns the index of identity in the order.
func (p *Plan) Position(identity string) (int, bool) {
	i, ok := p.position[identity]
	return i, ok
}

// Len returns the number of planned identities.
func (p *Plan) Len() int { return len(p.order) }

const unvisited = -1

type frame struct {
	v    int
	next int
}

// Compute orders g so that dependencies precede their dependents.
//
// Strongly connected components are found with an iterative Tarjan traversal,
// which emits a component only after every component reachable from it; that
// emission order is already dependencies-first. Roots are visited in first-seen
// order and edges in insertion order, so the result is deterministic for the same
// input. Compute never fails: cycles collapse into a single contiguous component.
// Runs in O(V+E).
func Compute(g *graph.Graph) *Plan {
	n := g.Len()
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var (
		stack   []int
		call    []frame
		counter int
		comps   [][]int
	)

	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		call = append(call, frame{v: v})
	}

	for root := 0; root < n; root++ {
		if index[root] != unvisited {
			continue
		}
		visit(root)

		for len(call) > 0 {
			top := &call[len(call)-1]
			v := top.v
			out := g.Out(v)

			if top.next < len(out) {
				w := out[top.next]
				top.next++
				if index[w] == unvisited {
					visit(w)
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			if low[v] == index[v] {
				var members []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					members = append(members, w)
					if w == v {
						break
					}
				}
				sort.Ints(members)
				comps = append(comps, members)
			}

			call = call[:len(call)-1]
			if len(call) > 0 {
				parent := call[len(call)-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
		}
	}

	p := &Plan{
		order:      make([]string, 0, n),
		components: make([]Component, 0, len(comps)),
		position:   make(map[string]int, n),
	}
	for _, members := range comps {
		c := Component{
			Members: make([]string, 0, len(members)),
			Cyclic:  len(members) > 1 || selfLoop(g, members[0]),
		}
		for _, m := range members {
			id := g.At(m).ID()
			c.Members = append(c.Members, id)
			p.position[id] = len(p.order)
			p.order = append(p.order, id)
		}
		p.components = append(p.components, c)
	}
	return p
}

func selfLoop(g *graph.Graph, v int) bool {
	for _, w := range g.Out(v) {
		if w == v {
			return true
		}
	}
	return false
}
