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

// Package hierarchy provides the class-hierarchy oracle: subtype queries and
// method dispatch over the loaded class lattice. A Hierarchy is immutable
// once built; loading further classes means building a new one and
// re-running any analyses.
package hierarchy

import "go.uber.org/tarn/ir"

// Hierarchy indexes the inverse of the subclassing links the loader sets on
// classes.
type Hierarchy struct {
	classes       []*ir.Class
	subclasses    map[*ir.Class][]*ir.Class // class -> direct subclasses
	subinterfaces map[*ir.Class][]*ir.Class // interface -> direct subinterfaces
	implementors  map[*ir.Class][]*ir.Class // interface -> direct implementing classes
}

// New builds a hierarchy over the given classes. Query results follow the
// registration order of the classes, so a fixed class order gives fully
// deterministic resolution.
func New(classes ...*ir.Class) *Hierarchy {
	h := &Hierarchy{
		classes:       classes,
		subclasses:    make(map[*ir.Class][]*ir.Class),
		subinterfaces: make(map[*ir.Class][]*ir.Class),
		implementors:  make(map[*ir.Class][]*ir.Class),
	}
	for _, c := range classes {
		if c.Super != nil {
			h.subclasses[c.Super] = append(h.subclasses[c.Super], c)
		}
		for _, i := range c.Interfaces {
			if c.IsInterface {
				h.subinterfaces[i] = append(h.subinterfaces[i], c)
			} else {
				h.implementors[i] = append(h.implementors[i], c)
			}
		}
	}
	return h
}

// Classes returns every class of the hierarchy in registration order.
func (h *Hierarchy) Classes() []*ir.Class { return h.classes }

// DirectSubclassesOf returns the classes whose immediate superclass is c.
func (h *Hierarchy) DirectSubclassesOf(c *ir.Class) []*ir.Class { return h.subclasses[c] }

// DirectSubinterfacesOf returns the interfaces directly extending i.
func (h *Hierarchy) DirectSubinterfacesOf(i *ir.Class) []*ir.Class { return h.subinterfaces[i] }

// DirectImplementorsOf returns the classes directly implementing i.
func (h *Hierarchy) DirectImplementorsOf(i *ir.Class) []*ir.Class { return h.implementors[i] }

// SuperclassOf returns the immediate superclass of c, or nil.
func (h *Hierarchy) SuperclassOf(c *ir.Class) *ir.Class { return c.Super }

// Dispatch simulates runtime dispatch of subsig on a receiver of class c: it
// walks from c up the superclass chain and returns the first non-abstract
// declaration found, or nil if the chain declares none.
func (h *Hierarchy) Dispatch(c *ir.Class, subsig string) *ir.Method {
	for cur := c; cur != nil; cur = cur.Super {
		if m := cur.DeclaredMethod(subsig); m != nil && !m.IsAbstract {
			return m
		}
	}
	return nil
}

// Resolve computes the possible targets of a call site under class-hierarchy
// analysis. Virtual and interface calls close over the full subtype relation
// of the declared class, so every concrete override a subtype could
// contribute appears in the result. Dynamic call sites resolve to no
// targets.
func (h *Hierarchy) Resolve(call *ir.Invoke) []*ir.Method {
	subsig := call.Ref.Subsignature()
	switch call.Kind {
	case ir.Static, ir.Special:
		if m := h.Dispatch(call.Ref.Class, subsig); m != nil {
			return []*ir.Method{m}
		}
		return nil
	case ir.Virtual, ir.Interface:
		var targets []*ir.Method
		seen := make(map[*ir.Method]bool)
		visited := make(map[*ir.Class]bool)
		var walk func(c *ir.Class)
		walk = func(c *ir.Class) {
			if visited[c] {
				return
			}
			visited[c] = true
			if c.IsInterface {
				for _, s := range h.subinterfaces[c] {
					walk(s)
				}
				for _, impl := range h.implementors[c] {
					walk(impl)
				}
				return
			}
			if !c.IsAbstract {
				if m := h.Dispatch(c, subsig); m != nil && !seen[m] {
					seen[m] = true
					targets = append(targets, m)
				}
			}
			for _, s := range h.subclasses[c] {
				walk(s)
			}
		}
		walk(call.Ref.Class)
		return targets
	case ir.Dynamic:
		return nil
	}
	return nil
}
