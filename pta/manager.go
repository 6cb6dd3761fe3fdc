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

import "go.uber.org/tarn/ir"

// CSMethod is a context-qualified method.
type CSMethod struct {
	Context *Context
	Method  *ir.Method
}

func (m *CSMethod) String() string {
	return m.Context.String() + ":" + m.Method.Signature()
}

// CSCallSite is a context-qualified call site.
type CSCallSite struct {
	Context *Context
	Site    *ir.Invoke
}

// CSObj is a context-qualified abstract object. The id is the dense index
// points-to sets store.
type CSObj struct {
	HeapContext *Context
	Obj         *Obj

	id int
}

func (o *CSObj) String() string {
	return o.HeapContext.String() + ":" + o.Obj.String()
}

type csMethodKey struct {
	ctx *Context
	m   *ir.Method
}

type csSiteKey struct {
	ctx  *Context
	site *ir.Invoke
}

type csObjKey struct {
	hctx *Context
	obj  *Obj
}

// Manager interns context-qualified entities so their identity is the
// identity of the (context, element) pair.
type Manager struct {
	methods map[csMethodKey]*CSMethod
	sites   map[csSiteKey]*CSCallSite
	objs    map[csObjKey]*CSObj
	objList []*CSObj
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		methods: make(map[csMethodKey]*CSMethod),
		sites:   make(map[csSiteKey]*CSCallSite),
		objs:    make(map[csObjKey]*CSObj),
	}
}

// CSMethodOf interns (ctx, m).
func (mg *Manager) CSMethodOf(ctx *Context, m *ir.Method) *CSMethod {
	key := csMethodKey{ctx, m}
	if cm, ok := mg.methods[key]; ok {
		return cm
	}
	cm := &CSMethod{Context: ctx, Method: m}
	mg.methods[key] = cm
	return cm
}

// CSCallSiteOf interns (ctx, site).
func (mg *Manager) CSCallSiteOf(ctx *Context, site *ir.Invoke) *CSCallSite {
	key := csSiteKey{ctx, site}
	if cs, ok := mg.sites[key]; ok {
		return cs
	}
	cs := &CSCallSite{Context: ctx, Site: site}
	mg.sites[key] = cs
	return cs
}

// CSObjOf interns (hctx, obj), assigning a dense id on first use.
func (mg *Manager) CSObjOf(hctx *Context, obj *Obj) *CSObj {
	key := csObjKey{hctx, obj}
	if co, ok := mg.objs[key]; ok {
		return co
	}
	co := &CSObj{HeapContext: hctx, Obj: obj, id: len(mg.objList)}
	mg.objs[key] = co
	mg.objList = append(mg.objList, co)
	return co
}

// ObjByID returns the interned object with the given dense id.
func (mg *Manager) ObjByID(id int) *CSObj { return mg.objList[id] }

// NumObjs returns the number of interned context-qualified objects.
func (mg *Manager) NumObjs() int { return len(mg.objList) }
