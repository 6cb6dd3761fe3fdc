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

package dataflow

import (
	"strings"

	"go.uber.org/tarn/ir"
	"go.uber.org/tarn/util/orderedmap"
)

// CPFact maps variables to constant-lattice values. A variable with no
// binding is implicitly Undef. The fact iterates in binding-insertion order
// so fixpoints stay deterministic.
type CPFact struct {
	m *orderedmap.OrderedMap[*ir.Var, Value]
}

// NewCPFact creates an empty fact.
func NewCPFact() *CPFact {
	return &CPFact{m: orderedmap.New[*ir.Var, Value]()}
}

// Get returns the value bound to v, or Undef if v is unbound.
func (f *CPFact) Get(v *ir.Var) Value {
	val, ok := f.m.Load(v)
	if !ok {
		return Undef
	}
	return val
}

// Update binds v to val and reports whether the binding changed.
func (f *CPFact) Update(v *ir.Var, val Value) bool {
	old, ok := f.m.Load(v)
	if ok && old == val {
		return false
	}
	f.m.Store(v, val)
	return true
}

// Remove drops the binding of v.
func (f *CPFact) Remove(v *ir.Var) { f.m.Delete(v) }

// Keys returns the bound variables in insertion order.
func (f *CPFact) Keys() []*ir.Var { return f.m.Keys() }

// Range calls fn for each binding in insertion order until fn returns false.
func (f *CPFact) Range(fn func(v *ir.Var, val Value) bool) { f.m.Range(fn) }

// Copy returns an independent copy of f.
func (f *CPFact) Copy() *CPFact {
	c := NewCPFact()
	f.m.Range(func(v *ir.Var, val Value) bool {
		c.m.Store(v, val)
		return true
	})
	return c
}

// CopyFrom replaces the contents of f with those of src and reports whether
// f changed.
func (f *CPFact) CopyFrom(src *CPFact) bool {
	if f.Equals(src) {
		return false
	}
	f.m = orderedmap.New[*ir.Var, Value]()
	src.m.Range(func(v *ir.Var, val Value) bool {
		f.m.Store(v, val)
		return true
	})
	return true
}

// MeetInto meets every binding of f into dst pointwise.
func (f *CPFact) MeetInto(dst *CPFact) {
	f.m.Range(func(v *ir.Var, val Value) bool {
		dst.Update(v, MeetValue(val, dst.Get(v)))
		return true
	})
}

// Equals reports whether f and o bind every variable to the same value,
// treating unbound variables as Undef on both sides.
func (f *CPFact) Equals(o *CPFact) bool {
	eq := true
	f.m.Range(func(v *ir.Var, val Value) bool {
		if o.Get(v) != val {
			eq = false
		}
		return eq
	})
	if !eq {
		return false
	}
	o.m.Range(func(v *ir.Var, val Value) bool {
		if f.Get(v) != val {
			eq = false
		}
		return eq
	})
	return eq
}

func (f *CPFact) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	f.m.Range(func(v *ir.Var, val Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(v.Name)
		sb.WriteByte('=')
		sb.WriteString(val.String())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
