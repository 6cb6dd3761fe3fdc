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

// Package interproc overlays per-method CFGs with call and return edges
// derived from a call graph, and solves edge-aware dataflow analyses over
// the resulting interprocedural CFG. The one shipped instantiation is
// interprocedural constant propagation.
package interproc

import (
	"go.uber.org/tarn/callgraph"
	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/ir"
)

// EdgeKind classifies an ICFG edge.
type EdgeKind uint8

const (
	// Normal connects two nodes of the same method, as in the method's CFG.
	Normal EdgeKind = iota
	// CallToReturn connects a call site to its fall-through inside the
	// caller, bypassing the callee.
	CallToReturn
	// Call connects a call site to a callee's entry.
	Call
	// Return connects a callee's exit to a return site of the call.
	Return
)

// Edge is a directed ICFG edge. CallSite is set on CallToReturn, Call and
// Return edges; Callee only on Call edges; RetVars only on Return edges,
// holding the callee's return variables.
type Edge struct {
	Kind     EdgeKind
	Source   ir.Stmt
	Target   ir.Stmt
	CallSite *ir.Invoke
	Callee   *ir.Method
	RetVars  []*ir.Var
}

// Graph is an interprocedural CFG.
type Graph struct {
	cg   *callgraph.Graph
	cfgs map[*ir.Method]*cfg.Graph

	nodes   []ir.Stmt
	present map[ir.Stmt]bool
	in      map[ir.Stmt][]Edge
	out     map[ir.Stmt][]Edge

	entryNodes map[ir.Stmt]*ir.Method // entry node of each entry method
}

// Build assembles the ICFG of cg's reachable methods from their CFGs.
// Methods without a CFG (abstract or unmodeled bodies) contribute no nodes;
// calls to them simply flow through their CallToReturn edges.
func Build(cg *callgraph.Graph, cfgs map[*ir.Method]*cfg.Graph) *Graph {
	g := &Graph{
		cg:         cg,
		cfgs:       cfgs,
		present:    make(map[ir.Stmt]bool),
		in:         make(map[ir.Stmt][]Edge),
		out:        make(map[ir.Stmt][]Edge),
		entryNodes: make(map[ir.Stmt]*ir.Method),
	}
	for _, m := range cg.Reachable() {
		c := cfgs[m]
		if c == nil {
			continue
		}
		for _, n := range c.Nodes() {
			g.addNode(n)
		}
		for _, n := range c.Nodes() {
			call, isCall := n.(*ir.Invoke)
			for _, e := range c.OutEdgesOf(n) {
				if isCall {
					g.addEdge(Edge{Kind: CallToReturn, Source: n, Target: e.Target, CallSite: call})
				} else {
					g.addEdge(Edge{Kind: Normal, Source: n, Target: e.Target})
				}
			}
		}
	}
	for _, ce := range cg.Edges() {
		calleeCFG := cfgs[ce.Callee]
		callerCFG := cfgs[ce.CallSite.Container()]
		if calleeCFG == nil || callerCFG == nil {
			continue
		}
		g.addEdge(Edge{
			Kind:     Call,
			Source:   ce.CallSite,
			Target:   calleeCFG.Entry(),
			CallSite: ce.CallSite,
			Callee:   ce.Callee,
		})
		for _, rs := range callerCFG.SuccsOf(ce.CallSite) {
			g.addEdge(Edge{
				Kind:     Return,
				Source:   calleeCFG.Exit(),
				Target:   rs,
				CallSite: ce.CallSite,
				RetVars:  ce.Callee.ReturnVars(),
			})
		}
	}
	for _, m := range cg.Entries() {
		if c := cfgs[m]; c != nil {
			g.entryNodes[c.Entry()] = m
		}
	}
	return g
}

func (g *Graph) addNode(n ir.Stmt) {
	if !g.present[n] {
		g.present[n] = true
		g.nodes = append(g.nodes, n)
	}
}

func (g *Graph) addEdge(e Edge) {
	g.addNode(e.Source)
	g.addNode(e.Target)
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

// Nodes returns every ICFG node in insertion order.
func (g *Graph) Nodes() []ir.Stmt { return g.nodes }

// InEdgesOf returns the edges entering n.
func (g *Graph) InEdgesOf(n ir.Stmt) []Edge { return g.in[n] }

// OutEdgesOf returns the edges leaving n.
func (g *Graph) OutEdgesOf(n ir.Stmt) []Edge { return g.out[n] }

// EntryMethodOf returns the entry method whose CFG entry node is n, if any.
func (g *Graph) EntryMethodOf(n ir.Stmt) (*ir.Method, bool) {
	m, ok := g.entryNodes[n]
	return m, ok
}

// CallGraph returns the call graph the ICFG was built over.
func (g *Graph) CallGraph() *callgraph.Graph { return g.cg }

// CFGOf returns the CFG of m, or nil.
func (g *Graph) CFGOf(m *ir.Method) *cfg.Graph { return g.cfgs[m] }
