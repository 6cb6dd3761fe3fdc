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

package ir

import (
	"fmt"
	"strings"
)

// Class is a class or interface of the analyzed program. The loader links
// classes through Super and Interfaces; the hierarchy package derives the
// inverse indexes from those links.
type Class struct {
	Name        string
	Super       *Class
	Interfaces  []*Class
	IsInterface bool
	IsAbstract  bool

	methods map[string]*Method // keyed by subsignature
	order   []*Method          // declaration order
}

// NewClass creates an empty class with the given name.
func NewClass(name string) *Class {
	return &Class{Name: name, methods: make(map[string]*Method)}
}

// Type returns the reference type of c.
func (c *Class) Type() ClassType { return ClassType{Class: c} }

// DeclaredMethod returns the method declared directly in c with the given
// subsignature, or nil if c declares no such method.
func (c *Class) DeclaredMethod(subsig string) *Method { return c.methods[subsig] }

// DeclaredMethods returns the methods declared directly in c, in declaration
// order.
func (c *Class) DeclaredMethods() []*Method { return c.order }

// NewMethod declares an instance method in c. Parameter variables are created
// eagerly and can be reached through Method.Params; the receiver is available
// as Method.This.
func (c *Class) NewMethod(name string, ret Type, paramTypes ...Type) *Method {
	m := c.newMethod(name, ret, paramTypes)
	m.This = m.NewVar("this", c.Type())
	return m
}

// NewStaticMethod declares a static method in c.
func (c *Class) NewStaticMethod(name string, ret Type, paramTypes ...Type) *Method {
	m := c.newMethod(name, ret, paramTypes)
	m.IsStatic = true
	return m
}

func (c *Class) newMethod(name string, ret Type, paramTypes []Type) *Method {
	m := &Method{Class: c, Name: name, Ret: ret}
	for i, pt := range paramTypes {
		m.Params = append(m.Params, m.NewVar(fmt.Sprintf("arg%d", i), pt))
	}
	c.methods[m.Subsignature()] = m
	c.order = append(c.order, m)
	return m
}

func (c *Class) String() string { return c.Name }

// Method is a method of a class. Identity is by pointer; two methods are the
// same method exactly when they are the same *Method.
type Method struct {
	Class      *Class
	Name       string
	Ret        Type // nil for void
	Params     []*Var
	This       *Var // nil for static methods
	IsStatic   bool
	IsAbstract bool

	// Stmts is the method body in statement-index order, set by SetBody.
	// Abstract methods have no body.
	Stmts []Stmt

	vars []*Var
}

// NewVar creates a fresh local variable owned by m.
func (m *Method) NewVar(name string, t Type) *Var {
	v := &Var{Name: name, Type: t, Method: m}
	m.vars = append(m.vars, v)
	return v
}

// Vars returns every variable of m (receiver and formals included) in
// creation order.
func (m *Method) Vars() []*Var { return m.vars }

// SetBody installs the method body, numbering the statements and recording,
// on each variable, the field/array accesses and call sites it anchors. It
// must be called once, with the full body.
func (m *Method) SetBody(stmts ...Stmt) {
	m.Stmts = stmts
	for i, s := range stmts {
		in := s.info()
		in.index = i
		in.container = m
		switch s := s.(type) {
		case *LoadField:
			if s.Base != nil {
				s.Base.loadFields = append(s.Base.loadFields, s)
			}
		case *StoreField:
			if s.Base != nil {
				s.Base.storeFields = append(s.Base.storeFields, s)
			}
		case *LoadArray:
			s.Base.loadArrays = append(s.Base.loadArrays, s)
		case *StoreArray:
			s.Base.storeArrays = append(s.Base.storeArrays, s)
		case *Invoke:
			if s.Recv != nil {
				s.Recv.invokes = append(s.Recv.invokes, s)
			}
		}
	}
}

// CallSites returns the call sites inside m in statement order.
func (m *Method) CallSites() []*Invoke {
	var sites []*Invoke
	for _, s := range m.Stmts {
		if call, ok := s.(*Invoke); ok {
			sites = append(sites, call)
		}
	}
	return sites
}

// ReturnVars returns the variables returned by m, deduplicated and in
// statement order.
func (m *Method) ReturnVars() []*Var {
	var vars []*Var
	seen := make(map[*Var]bool)
	for _, s := range m.Stmts {
		ret, ok := s.(*Return)
		if !ok {
			continue
		}
		for _, v := range ret.Vars {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}
	return vars
}

// Subsignature is the within-hierarchy dispatch key of the method: its return
// type, name and parameter types, without the declaring class.
func (m *Method) Subsignature() string {
	return subsignature(m.Ret, m.Name, paramTypes(m.Params))
}

// Signature is the globally unique name of the method.
func (m *Method) Signature() string {
	return m.Class.Name + ": " + m.Subsignature()
}

// Ref returns a method reference that resolves back to m under its declaring
// class.
func (m *Method) Ref() *MethodRef {
	return &MethodRef{Class: m.Class, Name: m.Name, Ret: m.Ret, Params: paramTypes(m.Params)}
}

func (m *Method) String() string { return m.Signature() }

func paramTypes(params []*Var) []Type {
	ts := make([]Type, len(params))
	for i, p := range params {
		ts[i] = p.Type
	}
	return ts
}

func subsignature(ret Type, name string, params []Type) string {
	var sb strings.Builder
	if ret == nil {
		sb.WriteString("void")
	} else {
		sb.WriteString(ret.String())
	}
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// MethodRef is the unresolved method reference carried by a call site.
type MethodRef struct {
	Class  *Class // declared class of the reference
	Name   string
	Ret    Type
	Params []Type
}

// Subsignature returns the dispatch key of the referenced method.
func (r *MethodRef) Subsignature() string {
	return subsignature(r.Ret, r.Name, r.Params)
}

func (r *MethodRef) String() string {
	return r.Class.Name + ": " + r.Subsignature()
}

// FieldRef identifies a field. The loader creates exactly one FieldRef per
// field, so identity is by pointer.
type FieldRef struct {
	Class  *Class
	Name   string
	Type   Type
	Static bool
}

func (f *FieldRef) String() string { return f.Class.Name + "." + f.Name }

// Var is a method-local variable, including formals and the receiver.
// Identity is by pointer.
type Var struct {
	Name   string
	Type   Type
	Method *Method

	loadFields  []*LoadField
	storeFields []*StoreField
	loadArrays  []*LoadArray
	storeArrays []*StoreArray
	invokes     []*Invoke
}

func (*Var) isExp() {}

func (v *Var) String() string { return v.Name }

// LoadFields returns the loads `x = v.f` with v as the base.
func (v *Var) LoadFields() []*LoadField { return v.loadFields }

// StoreFields returns the stores `v.f = x` with v as the base.
func (v *Var) StoreFields() []*StoreField { return v.storeFields }

// LoadArrays returns the loads `x = v[i]` with v as the base.
func (v *Var) LoadArrays() []*LoadArray { return v.loadArrays }

// StoreArrays returns the stores `v[i] = x` with v as the base.
func (v *Var) StoreArrays() []*StoreArray { return v.storeArrays }

// Invokes returns the call sites with v as the receiver.
func (v *Var) Invokes() []*Invoke { return v.invokes }
