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

package pta

import (
	"go.uber.org/tarn/callgraph"
	"go.uber.org/tarn/ir"
)

// Result is the outcome of a pointer analysis run: the call graph built on
// the fly, the pointer flow graph, and the points-to sets behind the query
// methods. Context-qualified queries see the raw sets; the plain queries
// project contexts away.
type Result struct {
	// CallGraph is the call graph constructed during the analysis,
	// projected onto plain methods.
	CallGraph *callgraph.Graph

	// Incomplete is set when the run was cancelled before the fixpoint.
	Incomplete bool

	mgr       *Manager
	pfg       *PFG
	reachList []*CSMethod
}

// PointsTo returns the abstract objects v may point to, projected over all
// contexts of v, in first-discovery order.
func (r *Result) PointsTo(v *ir.Var) []*Obj {
	var objs []*Obj
	seen := make(map[*Obj]bool)
	for id, key := range r.pfg.keys {
		vp, ok := key.(varPtr)
		if !ok || vp.v != v {
			continue
		}
		var ids []int
		for _, objID := range r.pfg.ptsOf(id).AppendTo(ids) {
			o := r.mgr.ObjByID(objID).Obj
			if !seen[o] {
				seen[o] = true
				objs = append(objs, o)
			}
		}
	}
	return objs
}

// PointsToIn returns the context-qualified objects v points to under ctx.
func (r *Result) PointsToIn(ctx *Context, v *ir.Var) []*CSObj {
	id, ok := r.pfg.ids[varPtr{ctx, v}]
	if !ok {
		return nil
	}
	return r.csObjsOf(id)
}

// StaticFieldPointsTo returns the objects the static field f may hold,
// projected over heap contexts.
func (r *Result) StaticFieldPointsTo(f *ir.FieldRef) []*Obj {
	id, ok := r.pfg.ids[staticFieldPtr{f}]
	if !ok {
		return nil
	}
	return projectObjs(r.csObjsOf(id))
}

// FieldPointsTo returns the objects field f of the abstract object base may
// hold, projected over contexts.
func (r *Result) FieldPointsTo(base *Obj, f *ir.FieldRef) []*Obj {
	var objs []*Obj
	seen := make(map[*Obj]bool)
	for id, key := range r.pfg.keys {
		fp, ok := key.(instanceFieldPtr)
		if !ok || fp.obj.Obj != base || fp.field != f {
			continue
		}
		for _, o := range projectObjs(r.csObjsOf(id)) {
			if !seen[o] {
				seen[o] = true
				objs = append(objs, o)
			}
		}
	}
	return objs
}

// ReachableCSMethods returns the context-qualified reachable methods in
// discovery order.
func (r *Result) ReachableCSMethods() []*CSMethod { return r.reachList }

// PFG returns the pointer flow graph.
func (r *Result) PFG() *PFG { return r.pfg }

func (r *Result) csObjsOf(node int) []*CSObj {
	var ids []int
	ids = r.pfg.ptsOf(node).AppendTo(ids)
	objs := make([]*CSObj, len(ids))
	for i, id := range ids {
		objs[i] = r.mgr.ObjByID(id)
	}
	return objs
}

func projectObjs(cs []*CSObj) []*Obj {
	var objs []*Obj
	seen := make(map[*Obj]bool)
	for _, c := range cs {
		if !seen[c.Obj] {
			seen[c.Obj] = true
			objs = append(objs, c.Obj)
		}
	}
	return objs
}
