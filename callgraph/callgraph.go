//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package callgraph defines the call graph data model shared by the CHA
// builder and the pointer analyses: the set of reachable methods, the entry
// methods, and the call edges with their per-site and per-method indexes.
package callgraph

import (
	"go.uber.org/tarn/ir"
	"go.uber.org/tarn/util/orderedmap"
)

// Edge is a resolved call edge.
type Edge struct {
	Kind     ir.CallKind
	CallSite *ir.Invoke
	Callee   *ir.Method
}

// Graph is a mutable call graph. All accessors iterate in insertion order.
type Graph struct {
	entries   []*ir.Method
	reachable *orderedmap.OrderedMap[*ir.Method, bool]
	edges     []Edge
	edgeSet   map[Edge]bool
	outEdges  map[*ir.Invoke][]Edge
	inEdges   map[*ir.Method][]Edge
}

// New creates an empty call graph.
func New() *Graph {
	return &Graph{
		reachable: orderedmap.New[*ir.Method, bool](),
		edgeSet:   make(map[Edge]bool),
		outEdges:  make(map[*ir.Invoke][]Edge),
		inEdges:   make(map[*ir.Method][]Edge),
	}
}

// AddEntry registers m as an entry method of the program.
func (g *Graph) AddEntry(m *ir.Method) {
	for _, e := range g.entries {
		if e == m {
			return
		}
	}
	g.entries = append(g.entries, m)
}

// Entries returns the entry methods.
func (g *Graph) Entries() []*ir.Method { return g.entries }

// AddReachable inserts m into the reachable set. It reports whether m was
// newly inserted; adding a method twice is a no-op.
func (g *Graph) AddReachable(m *ir.Method) bool {
	if _, ok := g.reachable.Load(m); ok {
		return false
	}
	g.reachable.Store(m, true)
	return true
}

// Contains reports whether m is reachable.
func (g *Graph) Contains(m *ir.Method) bool {
	_, ok := g.reachable.Load(m)
	return ok
}

// Reachable returns the reachable methods in insertion order.
func (g *Graph) Reachable() []*ir.Method { return g.reachable.Keys() }

// AddEdge inserts a call edge. It reports whether the edge was new;
// duplicate edges are a no-op.
func (g *Graph) AddEdge(e Edge) bool {
	if g.edgeSet[e] {
		return false
	}
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	g.outEdges[e.CallSite] = append(g.outEdges[e.CallSite], e)
	g.inEdges[e.Callee] = append(g.inEdges[e.Callee], e)
	return true
}

// Edges returns every call edge in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// OutEdgesOf returns the edges leaving the call site.
func (g *Graph) OutEdgesOf(site *ir.Invoke) []Edge { return g.outEdges[site] }

// CalleesOf returns the methods the call site may invoke.
func (g *Graph) CalleesOf(site *ir.Invoke) []*ir.Method {
	edges := g.outEdges[site]
	callees := make([]*ir.Method, 0, len(edges))
	seen := make(map[*ir.Method]bool, len(edges))
	for _, e := range edges {
		if !seen[e.Callee] {
			seen[e.Callee] = true
			callees = append(callees, e.Callee)
		}
	}
	return callees
}

// CallersOf returns the edges entering m.
func (g *Graph) CallersOf(m *ir.Method) []Edge { return g.inEdges[m] }

// CallSitesIn returns the call sites inside m in statement order.
func (g *Graph) CallSitesIn(m *ir.Method) []*ir.Invoke { return m.CallSites() }
