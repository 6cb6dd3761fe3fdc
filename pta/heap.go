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

// Obj is an abstract heap object. Under the allocation-site abstraction
// there is exactly one Obj per New statement, so identity is by pointer.
type Obj struct {
	Site *ir.New
	Type ir.Type
}

func (o *Obj) String() string { return "new " + o.Type.String() }

// HeapModel abstracts concrete heap allocations into Objs.
type HeapModel interface {
	ObjOf(s *ir.New) *Obj
}

// AllocSiteModel is the allocation-site heap abstraction: every New
// statement denotes one abstract object.
type AllocSiteModel struct {
	objs map[*ir.New]*Obj
}

// NewAllocSiteModel returns an empty allocation-site model.
func NewAllocSiteModel() *AllocSiteModel {
	return &AllocSiteModel{objs: make(map[*ir.New]*Obj)}
}

// ObjOf returns the abstract object of the allocation site s.
func (m *AllocSiteModel) ObjOf(s *ir.New) *Obj {
	if o, ok := m.objs[s]; ok {
		return o
	}
	o := &Obj{Site: s, Type: s.Type}
	m.objs[s] = o
	return o
}
