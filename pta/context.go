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
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/tarn/ir"
)

// Context is an interned, immutable abstraction of calling history: a
// sequence of context elements (call sites, objects or types, depending on
// the selector). Contexts form a trie rooted at an empty context, so two
// contexts with the same elements are the same pointer and compare with ==.
type Context struct {
	parent *Context
	elem   any
	depth  int
	kids   map[any]*Context
}

// NewEmptyContext creates the root of a fresh context trie. All contexts of
// one analysis run must grow from the same root.
func NewEmptyContext() *Context { return &Context{} }

// Depth returns the number of elements in the context.
func (c *Context) Depth() int { return c.depth }

// Elems returns the context elements, oldest first.
func (c *Context) Elems() []any {
	elems := make([]any, c.depth)
	for cur := c; cur.parent != nil; cur = cur.parent {
		elems[cur.depth-1] = cur.elem
	}
	return elems
}

func (c *Context) root() *Context {
	cur := c
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (c *Context) child(elem any) *Context {
	if c.kids == nil {
		c.kids = make(map[any]*Context)
	}
	if k, ok := c.kids[elem]; ok {
		return k
	}
	k := &Context{parent: c, elem: elem, depth: c.depth + 1}
	c.kids[elem] = k
	return k
}

// Append returns the context holding the elements of c followed by elem,
// truncated to the last limit elements.
func (c *Context) Append(elem any, limit int) *Context {
	elems := append(c.Elems(), elem)
	if len(elems) > limit {
		elems = elems[len(elems)-limit:]
	}
	cur := c.root()
	for _, e := range elems {
		cur = cur.child(e)
	}
	return cur
}

// Limit returns the context holding only the last n elements of c.
func (c *Context) Limit(n int) *Context {
	if c.depth <= n {
		return c
	}
	elems := c.Elems()
	elems = elems[len(elems)-n:]
	cur := c.root()
	for _, e := range elems {
		cur = cur.child(e)
	}
	return cur
}

func (c *Context) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range c.Elems() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, e)
	}
	sb.WriteByte(']')
	return sb.String()
}

// ContextSelector is the pluggable context-sensitivity policy: it decides
// the context of a callee at each call site and the heap context of each
// allocation.
type ContextSelector interface {
	// EmptyContext returns the context of entry methods.
	EmptyContext() *Context
	// SelectHeapContext returns the heap context for obj allocated in m.
	SelectHeapContext(m *CSMethod, obj *Obj) *Context
	// SelectStaticContext returns the callee context for a static call.
	SelectStaticContext(site *CSCallSite, callee *ir.Method) *Context
	// SelectInstanceContext returns the callee context for an instance call
	// with receiver object recv.
	SelectInstanceContext(site *CSCallSite, recv *CSObj, callee *ir.Method) *Context
}

// Insensitive merges all calling histories into the empty context; the
// analysis degenerates to the context-insensitive one.
type Insensitive struct {
	root *Context
}

// NewInsensitive returns the context-insensitive selector.
func NewInsensitive() *Insensitive { return &Insensitive{root: NewEmptyContext()} }

func (s *Insensitive) EmptyContext() *Context { return s.root }

func (s *Insensitive) SelectHeapContext(*CSMethod, *Obj) *Context { return s.root }

func (s *Insensitive) SelectStaticContext(*CSCallSite, *ir.Method) *Context { return s.root }

func (s *Insensitive) SelectInstanceContext(*CSCallSite, *CSObj, *ir.Method) *Context {
	return s.root
}

// KCallSelector is k-limited call-site sensitivity: callee contexts are the
// last k call sites, heap contexts the last k-1.
type KCallSelector struct {
	k    int
	root *Context
}

// NewKCallSelector returns a k-CFA selector.
func NewKCallSelector(k int) *KCallSelector {
	return &KCallSelector{k: k, root: NewEmptyContext()}
}

func (s *KCallSelector) EmptyContext() *Context { return s.root }

func (s *KCallSelector) SelectHeapContext(m *CSMethod, _ *Obj) *Context {
	return m.Context.Limit(s.k - 1)
}

func (s *KCallSelector) SelectStaticContext(site *CSCallSite, _ *ir.Method) *Context {
	return site.Context.Append(site.Site, s.k)
}

func (s *KCallSelector) SelectInstanceContext(site *CSCallSite, _ *CSObj, _ *ir.Method) *Context {
	return site.Context.Append(site.Site, s.k)
}

// KObjSelector is k-limited object sensitivity: callee contexts are the
// receiver's allocation chain.
type KObjSelector struct {
	k    int
	root *Context
}

// NewKObjSelector returns a k-object-sensitive selector.
func NewKObjSelector(k int) *KObjSelector {
	return &KObjSelector{k: k, root: NewEmptyContext()}
}

func (s *KObjSelector) EmptyContext() *Context { return s.root }

func (s *KObjSelector) SelectHeapContext(m *CSMethod, _ *Obj) *Context {
	return m.Context.Limit(s.k - 1)
}

func (s *KObjSelector) SelectStaticContext(site *CSCallSite, _ *ir.Method) *Context {
	// Static calls have no receiver; the caller's context carries over.
	return site.Context
}

func (s *KObjSelector) SelectInstanceContext(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return recv.HeapContext.Append(recv.Obj, s.k)
}

// KTypeSelector is k-limited type sensitivity: a coarser variant of object
// sensitivity using the receiver object's type as the context element.
type KTypeSelector struct {
	k    int
	root *Context
}

// NewKTypeSelector returns a k-type-sensitive selector.
func NewKTypeSelector(k int) *KTypeSelector {
	return &KTypeSelector{k: k, root: NewEmptyContext()}
}

func (s *KTypeSelector) EmptyContext() *Context { return s.root }

func (s *KTypeSelector) SelectHeapContext(m *CSMethod, _ *Obj) *Context {
	return m.Context.Limit(s.k - 1)
}

func (s *KTypeSelector) SelectStaticContext(site *CSCallSite, _ *ir.Method) *Context {
	return site.Context
}

func (s *KTypeSelector) SelectInstanceContext(_ *CSCallSite, recv *CSObj, _ *ir.Method) *Context {
	return recv.HeapContext.Append(recv.Obj.Type, s.k)
}

// ParseSelector returns the selector for a sensitivity policy string: "ci",
// or "<k>-call", "<k>-obj", "<k>-type" (e.g. "2-call").
func ParseSelector(policy string) (ContextSelector, error) {
	if policy == "ci" {
		return NewInsensitive(), nil
	}
	dash := strings.IndexByte(policy, '-')
	if dash > 0 {
		if k, err := strconv.Atoi(policy[:dash]); err == nil && k > 0 {
			switch policy[dash+1:] {
			case "call":
				return NewKCallSelector(k), nil
			case "obj":
				return NewKObjSelector(k), nil
			case "type":
				return NewKTypeSelector(k), nil
			}
		}
	}
	return nil, fmt.Errorf("pta: unknown context-sensitivity policy %q", policy)
}
