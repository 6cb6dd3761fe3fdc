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

// Package pta implements Andersen-style inclusion-based pointer analysis
// with on-the-fly call-graph construction. One solver serves both flavors:
// the context-sensitive analysis parameterized by a ContextSelector, and the
// context-insensitive one as the same solver under the Insensitive selector.
// Points-to facts only ever grow: the solver propagates set deltas through
// the pointer flow graph until the worklist drains.
package pta

import (
	"context"
	"errors"

	"golang.org/x/tools/container/intsets"

	"go.uber.org/tarn/callgraph"
	"go.uber.org/tarn/hierarchy"
	"go.uber.org/tarn/ir"
)

type workItem struct {
	node int
	pts  *intsets.Sparse
}

type csEdgeKey struct {
	site   *CSCallSite
	callee *CSMethod
}

type solver struct {
	hier     *hierarchy.Hierarchy
	heap     HeapModel
	selector ContextSelector

	mgr       *Manager
	pfg       *PFG
	cg        *callgraph.Graph
	csEdges   map[csEdgeKey]bool
	reachable map[*CSMethod]bool
	reachList []*CSMethod
	work      []workItem

	incomplete bool
}

// RunCI runs the context-insensitive analysis from entry. A nil heap model
// defaults to the allocation-site abstraction.
func RunCI(ctx context.Context, entry *ir.Method, heap HeapModel, h *hierarchy.Hierarchy) (*Result, error) {
	return RunCS(ctx, entry, heap, h, NewInsensitive())
}

// RunCS runs the context-sensitive analysis from entry under the given
// selector.
func RunCS(ctx context.Context, entry *ir.Method, heap HeapModel, h *hierarchy.Hierarchy, selector ContextSelector) (*Result, error) {
	if entry == nil {
		return nil, errors.New("pta: nil entry method")
	}
	if h == nil {
		return nil, errors.New("pta: nil class hierarchy")
	}
	if selector == nil {
		return nil, errors.New("pta: nil context selector")
	}
	if heap == nil {
		heap = NewAllocSiteModel()
	}
	s := &solver{
		hier:      h,
		heap:      heap,
		selector:  selector,
		mgr:       NewManager(),
		pfg:       newPFG(),
		cg:        callgraph.New(),
		csEdges:   make(map[csEdgeKey]bool),
		reachable: make(map[*CSMethod]bool),
	}
	s.cg.AddEntry(entry)
	s.addReachable(s.mgr.CSMethodOf(selector.EmptyContext(), entry))
	s.solve(ctx)
	return &Result{
		CallGraph:  s.cg,
		Incomplete: s.incomplete,
		mgr:        s.mgr,
		pfg:        s.pfg,
		reachList:  s.reachList,
	}, nil
}

// addReachable inserts m into the reachable set and, on first insertion,
// wires its statements into the pointer flow graph.
func (s *solver) addReachable(m *CSMethod) {
	if s.reachable[m] {
		return
	}
	s.reachable[m] = true
	s.reachList = append(s.reachList, m)
	s.cg.AddReachable(m.Method)
	p := &stmtProcessor{s: s, m: m}
	for _, st := range m.Method.Stmts {
		st.Accept(p)
	}
}

// stmtProcessor handles the pointer-relevant statements of a newly
// reachable method. Instance field and array accesses wait for receiver
// objects and are handled when deltas arrive.
type stmtProcessor struct {
	ir.BaseVisitor
	s *solver
	m *CSMethod
}

func (p *stmtProcessor) VisitNew(st *ir.New) {
	obj := p.s.heap.ObjOf(st)
	hctx := p.s.selector.SelectHeapContext(p.m, obj)
	cso := p.s.mgr.CSObjOf(hctx, obj)
	p.s.enqueueObj(varPtr{ctx: p.m.Context, v: st.Result}, cso)
}

func (p *stmtProcessor) VisitCopy(st *ir.Copy) {
	p.s.addPFGEdge(varPtr{p.m.Context, st.RHS}, varPtr{p.m.Context, st.Result})
}

func (p *stmtProcessor) VisitStoreField(st *ir.StoreField) {
	if st.IsStatic() {
		p.s.addPFGEdge(varPtr{p.m.Context, st.Value}, staticFieldPtr{st.Field})
	}
}

func (p *stmtProcessor) VisitLoadField(st *ir.LoadField) {
	if st.IsStatic() {
		p.s.addPFGEdge(staticFieldPtr{st.Field}, varPtr{p.m.Context, st.Result})
	}
}

func (p *stmtProcessor) VisitInvoke(st *ir.Invoke) {
	if !st.IsStatic() {
		return
	}
	callee := p.s.hier.Dispatch(st.Ref.Class, st.Ref.Subsignature())
	if callee == nil {
		return
	}
	site := p.s.mgr.CSCallSiteOf(p.m.Context, st)
	ctx := p.s.selector.SelectStaticContext(site, callee)
	p.s.addCallEdge(site, p.s.mgr.CSMethodOf(ctx, callee))
}

// enqueueObj schedules a single object for the pointer key.
func (s *solver) enqueueObj(key any, obj *CSObj) {
	pts := &intsets.Sparse{}
	pts.Insert(obj.id)
	s.work = append(s.work, workItem{node: s.pfg.nodeOf(key), pts: pts})
}

// addPFGEdge inserts src -> dst; if the edge is new and src already points
// somewhere, dst is scheduled to receive src's whole set.
func (s *solver) addPFGEdge(src, dst any) {
	a, b := s.pfg.nodeOf(src), s.pfg.nodeOf(dst)
	if !s.pfg.addEdge(a, b) {
		return
	}
	if pts := s.pfg.ptsOf(a); !pts.IsEmpty() {
		c := &intsets.Sparse{}
		c.Copy(pts)
		s.work = append(s.work, workItem{node: b, pts: c})
	}
}

// addCallEdge records a resolved call edge. On a new edge the callee becomes
// reachable and its formals and returns are wired to the site's arguments
// and result.
func (s *solver) addCallEdge(site *CSCallSite, callee *CSMethod) {
	key := csEdgeKey{site, callee}
	if s.csEdges[key] {
		return
	}
	s.csEdges[key] = true
	s.cg.AddEdge(callgraph.Edge{Kind: site.Site.Kind, CallSite: site.Site, Callee: callee.Method})
	s.addReachable(callee)
	for i, arg := range site.Site.Args {
		if i >= len(callee.Method.Params) {
			break
		}
		s.addPFGEdge(varPtr{site.Context, arg}, varPtr{callee.Context, callee.Method.Params[i]})
	}
	if res := site.Site.Result; res != nil {
		for _, rv := range callee.Method.ReturnVars() {
			s.addPFGEdge(varPtr{callee.Context, rv}, varPtr{site.Context, res})
		}
	}
}

// solve drains the worklist. Each iteration folds a delta into one pointer
// and, for variable pointers, reacts to the newly seen objects.
func (s *solver) solve(ctx context.Context) {
	for len(s.work) > 0 {
		if ctx.Err() != nil {
			s.incomplete = true
			return
		}
		it := s.work[0]
		s.work = s.work[1:]
		delta := &intsets.Sparse{}
		delta.Difference(it.pts, s.pfg.ptsOf(it.node))
		if delta.IsEmpty() {
			continue
		}
		s.propagate(it.node, delta)
		if vp, ok := s.pfg.keyOf(it.node).(varPtr); ok {
			var ids []int
			for _, id := range delta.AppendTo(ids) {
				s.processObj(vp, s.mgr.ObjByID(id))
			}
		}
	}
}

// propagate unions delta into the node's set and forwards it along every
// out-edge.
func (s *solver) propagate(node int, delta *intsets.Sparse) {
	s.pfg.ptsOf(node).UnionWith(delta)
	for _, succ := range s.pfg.succsOf(node) {
		s.work = append(s.work, workItem{node: succ, pts: delta})
	}
}

// processObj reacts to a variable newly pointing to obj: it materializes the
// instance field and array constraints anchored on the variable and
// dispatches the calls it receives.
func (s *solver) processObj(vp varPtr, obj *CSObj) {
	x, ctx := vp.v, vp.ctx
	for _, st := range x.StoreFields() {
		s.addPFGEdge(varPtr{ctx, st.Value}, instanceFieldPtr{obj, st.Field})
	}
	for _, st := range x.LoadFields() {
		s.addPFGEdge(instanceFieldPtr{obj, st.Field}, varPtr{ctx, st.Result})
	}
	for _, st := range x.StoreArrays() {
		s.addPFGEdge(varPtr{ctx, st.Value}, arrayIndexPtr{obj})
	}
	for _, st := range x.LoadArrays() {
		s.addPFGEdge(arrayIndexPtr{obj}, varPtr{ctx, st.Result})
	}
	for _, call := range x.Invokes() {
		s.processCall(ctx, call, obj)
	}
}

// processCall dispatches a non-static call on the runtime type of one
// receiver object.
func (s *solver) processCall(ctx *Context, call *ir.Invoke, recv *CSObj) {
	callee := s.resolveCallee(recv.Obj.Type, call)
	if callee == nil {
		return
	}
	site := s.mgr.CSCallSiteOf(ctx, call)
	calleeCtx := s.selector.SelectInstanceContext(site, recv, callee)
	csCallee := s.mgr.CSMethodOf(calleeCtx, callee)
	if this := callee.This; this != nil {
		s.enqueueObj(varPtr{calleeCtx, this}, recv)
	}
	s.addCallEdge(site, csCallee)
}

// resolveCallee dispatches on the runtime type of the receiver for virtual
// and interface calls, and on the declared class for special calls. Dynamic
// calls resolve to nothing.
func (s *solver) resolveCallee(t ir.Type, call *ir.Invoke) *ir.Method {
	switch call.Kind {
	case ir.Virtual, ir.Interface:
		ct, ok := t.(ir.ClassType)
		if !ok {
			return nil
		}
		return s.hier.Dispatch(ct.Class, call.Ref.Subsignature())
	case ir.Special:
		return s.hier.Dispatch(call.Ref.Class, call.Ref.Subsignature())
	}
	return nil
}
