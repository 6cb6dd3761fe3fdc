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

// Package livevars implements live-variable analysis: a backward dataflow
// analysis whose fact at a point is the set of variables whose current value
// may still be read on some path from that point.
package livevars

import (
	"context"

	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/ir"
)

// Solve runs live-variable analysis over g.
func Solve(ctx context.Context, g *cfg.Graph) *dataflow.Result[Fact] {
	return dataflow.Solve[Fact](ctx, New(), g)
}

// Fact is the set of live variables at a program point.
type Fact = *dataflow.SetFact[*ir.Var]

// Analysis is the live-variable instantiation of the dataflow solver.
type Analysis struct{}

// New returns the analysis.
func New() *Analysis { return &Analysis{} }

// IsForward reports false: liveness flows against control flow.
func (*Analysis) IsForward() bool { return false }

// NewBoundaryFact returns the empty set: nothing is live after the exit.
func (*Analysis) NewBoundaryFact(*cfg.Graph) Fact {
	return dataflow.NewSetFact[*ir.Var]()
}

// NewInitialFact returns the empty set.
func (*Analysis) NewInitialFact() Fact {
	return dataflow.NewSetFact[*ir.Var]()
}

// MeetInto unions fact into target; the meet of may-liveness is set union.
func (*Analysis) MeetInto(fact, target Fact) {
	target.Union(fact)
}

// TransferNode computes in = use(s) ∪ (out − def(s)) and reports whether in
// changed.
func (*Analysis) TransferNode(s ir.Stmt, in, out Fact) bool {
	live := out.Copy()
	if def, ok := s.Def(); ok {
		live.Remove(def)
	}
	for _, u := range s.Uses() {
		live.Add(u)
	}
	if in.Equals(live) {
		return false
	}
	in.SetTo(live)
	return true
}
