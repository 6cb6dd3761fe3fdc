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

package interproc

import (
	"context"

	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/ir"
)

// Analysis is the capability set of an interprocedural dataflow analysis.
// Node transfers mirror the intraprocedural solver; the interprocedural
// semantics live entirely in the four edge transfers, which map the OUT fact
// of an edge's source to the contribution the edge makes to its target.
type Analysis[F any] interface {
	// NewBoundaryFact returns the fact at the entry node of an entry method.
	NewBoundaryFact(entry *ir.Method) F
	// NewInitialFact returns the bottom fact every other node starts from.
	NewInitialFact() F
	// MeetInto meets fact into target, updating target in place.
	MeetInto(fact, target F)
	// TransferCallNode transfers a call-site node; the call's effect is on
	// its edges, so this is a plain copy from in to out.
	TransferCallNode(n ir.Stmt, in, out F) bool
	// TransferNonCallNode transfers every other node.
	TransferNonCallNode(n ir.Stmt, in, out F) bool

	TransferNormalEdge(e Edge, out F) F
	TransferCallToReturnEdge(e Edge, out F) F
	TransferCallEdge(e Edge, callSiteOut F) F
	TransferReturnEdge(e Edge, calleeExitOut F) F
}

// Solve runs a to its fixpoint over the ICFG. Cancellation of ctx is
// observed between worklist iterations; the partial result is then flagged
// Incomplete.
func Solve[F any](ctx context.Context, a Analysis[F], g *Graph) *dataflow.Result[F] {
	r := dataflow.NewResult[F]()
	for _, n := range g.Nodes() {
		r.In[n] = a.NewInitialFact()
		r.Out[n] = a.NewInitialFact()
	}
	for _, n := range g.Nodes() {
		if m, ok := g.EntryMethodOf(n); ok {
			r.In[n] = a.NewBoundaryFact(m)
			r.Out[n] = a.NewBoundaryFact(m)
		}
	}

	work := newWorklist(g.Nodes())
	for {
		n, ok := work.pop()
		if !ok {
			return r
		}
		if ctx.Err() != nil {
			r.Incomplete = true
			return r
		}
		if _, isEntry := g.EntryMethodOf(n); isEntry {
			continue
		}
		in := r.In[n]
		for _, e := range g.InEdgesOf(n) {
			a.MeetInto(transferEdge(a, e, r.Out[e.Source]), in)
		}
		var changed bool
		if _, isCall := n.(*ir.Invoke); isCall {
			changed = a.TransferCallNode(n, in, r.Out[n])
		} else {
			changed = a.TransferNonCallNode(n, in, r.Out[n])
		}
		if changed {
			for _, e := range g.OutEdgesOf(n) {
				work.push(e.Target)
			}
		}
	}
}

// transferEdge dispatches on the edge kind.
func transferEdge[F any](a Analysis[F], e Edge, out F) F {
	switch e.Kind {
	case Normal:
		return a.TransferNormalEdge(e, out)
	case CallToReturn:
		return a.TransferCallToReturnEdge(e, out)
	case Call:
		return a.TransferCallEdge(e, out)
	default:
		return a.TransferReturnEdge(e, out)
	}
}

// worklist is a FIFO queue of nodes with membership dedup.
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
