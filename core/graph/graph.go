package graph

import "content-sync/core/record"

// Vertex is the handle of one identity in the graph.
// A Builder returns the same *Vertex for the same identity.
type Vertex struct {
	id    string
	index int
}

// ID returns the record identity of the vertex.
func (v *Vertex) ID() string { return v.id }

// Index returns the first-seen position of the vertex.
func (v *Vertex) Index() int { return v.index }

// Builder accumulates vertices and dependency edges for one batch.
// It is not safe for concurrent use.
type Builder struct {
	vertices []*Vertex
	byID     map[string]*Vertex
	out      [][]int
	seen     []map[int]struct{}
	edges    int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byID: make(map[string]*Vertex)}
}

// AddVertex returns the vertex for id, creating it on first use.
func (b *Builder) AddVertex(id string) *Vertex {
	if v, ok := b.byID[id]; ok {
		return v
	}
	v := &Vertex{id: id, index: len(b.vertices)}
	b.vertices = append(b.vertices, v)
	b.byID[id] = v
	b.out = append(b.out, nil)
	b.seen = append(b.seen, make(map[int]struct{}))
	return v
}

// AddEdge records that from depends on to.
// Edges touching an identity without a vertex are dropped and AddEdge reports false.
// Repeated edges are stored once. Self-edges are kept.
func (b *Builder) AddEdge(from, to string) bool {
	f, ok := b.byID[from]
	if !ok {
		return false
	}
	t, ok := b.byID[to]
	if !ok {
		return false
	}
	if _, dup := b.seen[f.index][t.index]; dup {
		return true
	}
	b.seen[f.index][t.index] = struct{}{}
	b.out[f.index] = append(b.out[f.index], t.index)
	b.edges++
	return true
}

// Build freezes the builder into an immutable Graph.
// The builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	g := &Graph{
		vertices: b.vertices,
		byID:     b.byID,
		out:      b.out,
		edges:    b.edges,
	}
	*b = Builder{}
	return g
}

// FromIndex builds the dependency graph of an indexed batch.
// Every descriptor becomes a vertex; references to identities outside the batch are dropped.
func FromIndex(idx *record.Index) *Graph {
	descs := idx.Descriptors()
	b := NewBuilder()
	for _, d := range descs {
		b.AddVertex(d.Identity)
	}
	for _, d := range descs {
		for _, ref := range d.References {
			b.AddEdge(d.Identity, ref)
		}
	}
	return b.Build()
}

// Graph is an immutable dependency graph. An edge A->B means A depends on B.
// It is safe for concurrent read access.
type Graph struct {
	vertices []*Vertex
	byID     map[string]*Vertex
	out      [][]int
	edges    int
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Vertex returns the vertex for id.
func (g *Graph) Vertex(id string) (*Vertex, bool) {
	v, ok := g.byID[id]
	return v, ok
}

// At returns the vertex at first-seen position i.
func (g *Graph) At(i int) *Vertex { return g.vertices[i] }

// Out returns the dependency indices of vertex i in insertion order.
// The returned slice must not be modified.
func (g *Graph) Out(i int) []int { return g.out[i] }

// HasEdge reports whether from depends directly on to.
func (g *Graph) HasEdge(from, to string) bool {
	f, ok := g.byID[from]
	if !ok {
		return false
	}
	t, ok := g.byID[to]
	if !ok {
		return false
	}
	for _, j := range g.out[f.index] {
		if j == t.index {
			return true
		}
	}
	return false
}

// DependenciesOf returns the identities id depends on, in insertion order.
func (g *Graph) DependenciesOf(id string) []string {
	v, ok := g.byID[id]
	if !ok {
		return nil
	}
	deps := make([]string, 0, len(g.out[v.index]))
	for _, j := range g.out[v.index] {
		deps = append(deps, g.vertices[j].id)
	}
	return deps
}

// Edge is a dependency pair: From depends on To.
type Edge struct {
	From string
	To   string
}

// Edges returns all edges ordered by source vertex, then insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for i, targets := range g.out {
		for _, j := range targets {
			out = append(out, Edge{From: g.vertices[i].id, To: g.vertices[j].id})
		}
	}
	return out
}
