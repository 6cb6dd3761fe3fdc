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

// Package dataflow provides the lattice primitives shared by the analyses
// (constant-lattice values, variable fact maps and set facts) and the
// generic worklist solver that drives any monotone analysis over a CFG to
// its fixpoint. The solver never inspects a fact's internals; it only copies
// facts around through the Analysis capability set, so termination rests
// entirely on transfer monotonicity and the finite height of the lattice.
package dataflow

import (
	"context"

	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/ir"
)

// Analysis is the capability set a dataflow analysis exposes to the solver.
// The fact type F must have reference semantics: TransferNode updates the
// destination fact in place.
type Analysis[F any] interface {
	// IsForward reports the direction of the analysis.
	IsForward() bool
	// NewBoundaryFact returns the fact at the boundary node (the entry of a
	// forward analysis, the exit of a backward one).
	NewBoundaryFact(g *cfg.Graph) F
	// NewInitialFact returns the bottom fact every other node starts from.
	NewInitialFact() F
	// MeetInto meets fact into target, updating target in place.
	MeetInto(fact, target F)
	// TransferNode applies the node transfer function. A forward analysis
	// reads in and updates out; a backward analysis reads out and updates
	// in. It reports whether the updated fact changed.
	TransferNode(node ir.Stmt, in, out F) bool
}

// Result holds the fixpoint facts at both sides of every node. Both the
// intraprocedural and the interprocedural solvers produce this shape.
type Result[F any] struct {
	In  map[ir.Stmt]F
	Out map[ir.Stmt]F

	// Incomplete is set when the solver was cancelled before reaching the
	// fixpoint; the facts are then a sound intermediate state, not the
	// final one.
	Incomplete bool
}

// NewResult creates an empty result.
func NewResult[F any]() *Result[F] {
	return &Result[F]{In: make(map[ir.Stmt]F), Out: make(map[ir.Stmt]F)}
}

// InOf returns the fact entering n.
func (r *Result[F]) InOf(n ir.Stmt) F { return r.In[n] }

// OutOf returns the fact leaving n.
func (r *Result[F]) OutOf(n ir.Stmt) F { return r.Out[n] }

// Solve runs a to its fixpoint over g and returns the facts. Cancellation of
// ctx is observed between worklist iterations; the partial result is then
// flagged Incomplete.
func Solve[F any](ctx context.Context, a Analysis[F], g *cfg.Graph) *Result[F] {
	r := initialize(a, g)
	if a.IsForward() {
		solveForward(ctx, a, g, r)
	} else {
		solveBackward(ctx, a, g, r)
	}
	return r
}

func initialize[F any](a Analysis[F], g *cfg.Graph) *Result[F] {
	r := &Result[F]{
		In:  make(map[ir.Stmt]F, len(g.Nodes())),
		Out: make(map[ir.Stmt]F, len(g.Nodes())),
	}
	for _, n := range g.Nodes() {
		r.In[n] = a.NewInitialFact()
		r.Out[n] = a.NewInitialFact()
	}
	boundary := g.Entry()
	if !a.IsForward() {
		boundary = g.Exit()
	}
	r.In[boundary] = a.NewBoundaryFact(g)
	r.Out[boundary] = a.NewBoundaryFact(g)
	return r
}

func solveForward[F any](ctx context.Context, a Analysis[F], g *cfg.Graph, r *Result[F]) {
	work := newWorklist(g.Nodes())
	for {
		n, ok := work.pop()
		if !ok {
			return
		}
		if ctx.Err() != nil {
			r.Incomplete = true
			return
		}
		if n == g.Entry() {
			continue
		}
		in := a.NewInitialFact()
		for _, p := range g.PredsOf(n) {
			a.MeetInto(r.Out[p], in)
		}
		r.In[n] = in
		if a.TransferNode(n, in, r.Out[n]) {
			for _, s := range g.SuccsOf(n) {
				work.push(s)
			}
		}
	}
}

func solveBackward[F any](ctx context.Context, a Analysis[F], g *cfg.Graph, r *Result[F]) {
	work := newWorklist(g.Nodes())
	for {
		n, ok := work.pop()
		if !ok {
			return
		}
		if ctx.Err() != nil {
			r.Incomplete = true
			return
		}
		if n == g.Exit() {
			continue
		}
		out := a.NewInitialFact()
		for _, s := range g.SuccsOf(n) {
			a.MeetInto(r.In[s], out)
		}
		r.Out[n] = out
		if a.TransferNode(n, r.In[n], out) {
			for _, p := range g.PredsOf(n) {
				work.push(p)
			}
		}
	}
}

// worklist is a FIFO queue of nodes with membership dedup; pushing a node
// already in the queue is a no-op.
type worklist struct {
	queue  []ir.Stmt
	queued map[ir.Stmt]bool
}

func newWorklist(nodes []ir.Stmt) *worklist {
	w := &worklist{queued: make(map[ir.Stmt]bool, len(nodes))}
	for _, n := range nodes {
		w.push(n)
	}
	return w
}

func (w *worklist) push(n ir.Stmt) {
	if !w.queued[n] {
		w.queued[n] = true
		w.queue = append(w.queue, n)
	}
}

func (w *worklist) pop() (ir.Stmt, bool) {
	if len(w.queue) == 0 {
		return nil, false
	}
	n := w.queue[0]
	w.queue = w.queue[1:]
	w.queued[n] = false
	return n, true
}
