// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package dag implements a minimal directed graph: just enough of a
// vertex/edge set to drive internal/dag/graphviz's dot export. It
// intentionally does not implement
// topological sort, cycle detection, or graph transforms — the
// resolver's own fixed-point worklist in internal/resolver does its own
// traversal directly over action.Action's Predecessors/Successors and
// never needs this package for anything but visualization.
package dag

import "iter"

// Vertex is any comparable value usable as a graph node. Graphviz's
// consumer package additionally requires every Vertex to implement
// Hashable.
type Vertex any

// Hashable is implemented by vertex types whose natural Go equality
// isn't a reliable identity (for example because they're structs
// embedding non-comparable fields elsewhere in the program). Hashcode's
// return value is used as the map key internally, so it must itself be
// comparable.
type Hashable interface {
	Hashcode() any
}

// Edge is a directed connection between two vertices.
type Edge interface {
	Source() Vertex
	Target() Vertex
}

type basicEdge struct {
	source, target Vertex
}

func (e basicEdge) Source() Vertex { return e.source }
func (e basicEdge) Target() Vertex { return e.target }

// BasicEdge returns an Edge implementation for the common case of a
// plain source/target pair with no additional metadata.
func BasicEdge(source, target Vertex) Edge {
	return basicEdge{source: source, target: target}
}

func hashcode(v Vertex) any {
	if h, ok := v.(Hashable); ok {
		return h.Hashcode()
	}
	return v
}

// Graph is a directed graph of vertices and edges. The zero value is an
// empty graph ready to use.
type Graph struct {
	vertices map[any]Vertex
	edges    map[any]map[any]Edge
}

func (g *Graph) init() {
	if g.vertices == nil {
		g.vertices = make(map[any]Vertex)
		g.edges = make(map[any]map[any]Edge)
	}
}

// Add inserts a vertex into the graph and returns it. Adding a vertex
// that already has an equal or equal-Hashcode entry replaces it.
func (g *Graph) Add(v Vertex) Vertex {
	g.init()
	g.vertices[hashcode(v)] = v
	return v
}

// Remove deletes a vertex and every edge touching it.
func (g *Graph) Remove(v Vertex) {
	g.init()
	h := hashcode(v)
	delete(g.vertices, h)
	delete(g.edges, h)
	for _, out := range g.edges {
		delete(out, h)
	}
}

// Connect adds a directed edge from source to target, adding either
// endpoint to the graph first if it isn't already present.
func (g *Graph) Connect(e Edge) {
	g.init()
	g.Add(e.Source())
	g.Add(e.Target())
	sh := hashcode(e.Source())
	if g.edges[sh] == nil {
		g.edges[sh] = make(map[any]Edge)
	}
	g.edges[sh][hashcode(e.Target())] = e
}

// HasVertex reports whether v (or an equal-Hashcode vertex) is present.
func (g *Graph) HasVertex(v Vertex) bool {
	g.init()
	_, ok := g.vertices[hashcode(v)]
	return ok
}

// VerticesSeq iterates every vertex in the graph, in unspecified order.
func (g *Graph) VerticesSeq() iter.Seq[Vertex] {
	g.init()
	return func(yield func(Vertex) bool) {
		for _, v := range g.vertices {
			if !yield(v) {
				return
			}
		}
	}
}

// EdgesSeq iterates every edge in the graph, in unspecified order.
func (g *Graph) EdgesSeq() iter.Seq[Edge] {
	g.init()
	return func(yield func(Edge) bool) {
		for _, out := range g.edges {
			for _, e := range out {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// DownEdgesSeq iterates the outgoing edges of v.
func (g *Graph) DownEdgesSeq(v Vertex) iter.Seq[Edge] {
	g.init()
	out := g.edges[hashcode(v)]
	return func(yield func(Edge) bool) {
		for _, e := range out {
			if !yield(e) {
				return
			}
		}
	}
}
