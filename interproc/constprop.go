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
	"go.uber.org/tarn/dataflow/constprop"
	"go.uber.org/tarn/ir"
)

// SolveConstProp runs interprocedural constant propagation over the ICFG.
func SolveConstProp(ctx context.Context, g *Graph) *dataflow.Result[*dataflow.CPFact] {
	return Solve[*dataflow.CPFact](ctx, NewConstProp(), g)
}

// ConstProp is interprocedural constant propagation. Inside a method it
// behaves exactly like the intraprocedural analysis; across calls, argument
// values flow into formals along Call edges, return values flow into the
// call's result along Return edges, and the CallToReturn edge kills the
// result binding so the callee's contribution is the only one.
type ConstProp struct {
	intra *constprop.Analysis
}

// NewConstProp returns the analysis.
func NewConstProp() *ConstProp {
	return &ConstProp{intra: constprop.New()}
}

// NewBoundaryFact binds every int-like parameter of an entry method to NAC.
func (*ConstProp) NewBoundaryFact(entry *ir.Method) *dataflow.CPFact {
	fact := dataflow.NewCPFact()
	for _, p := range entry.Params {
		if ir.IsIntLike(p.Type) {
			fact.Update(p, dataflow.NAC)
		}
	}
	return fact
}

// NewInitialFact returns the empty fact.
func (*ConstProp) NewInitialFact() *dataflow.CPFact {
	return dataflow.NewCPFact()
}

// MeetInto meets fact into target pointwise.
func (*ConstProp) MeetInto(fact, target *dataflow.CPFact) {
	fact.MeetInto(target)
}

// TransferCallNode copies in to out; the interesting semantics live on the
// call's edges.
func (*ConstProp) TransferCallNode(_ ir.Stmt, in, out *dataflow.CPFact) bool {
	return out.CopyFrom(in)
}

// TransferNonCallNode applies the intraprocedural transfer.
func (c *ConstProp) TransferNonCallNode(n ir.Stmt, in, out *dataflow.CPFact) bool {
	return c.intra.TransferNode(n, in, out)
}

// TransferNormalEdge is the identity.
func (*ConstProp) TransferNormalEdge(_ Edge, out *dataflow.CPFact) *dataflow.CPFact {
	return out
}

// TransferCallToReturnEdge passes the caller's fact through the call,
// killing the binding of the call's result variable.
func (*ConstProp) TransferCallToReturnEdge(e Edge, out *dataflow.CPFact) *dataflow.CPFact {
	fact := out.Copy()
	if res := e.CallSite.Result; res != nil {
		fact.Remove(res)
	}
	return fact
}

// TransferCallEdge builds the callee-entry fact: each int-like formal is
// bound to the value of its matching argument at the call site.
func (*ConstProp) TransferCallEdge(e Edge, callSiteOut *dataflow.CPFact) *dataflow.CPFact {
	fact := dataflow.NewCPFact()
	args := e.CallSite.Args
	for i, param := range e.Callee.Params {
		if i < len(args) && ir.IsIntLike(param.Type) {
			fact.Update(param, callSiteOut.Get(args[i]))
		}
	}
	return fact
}

// TransferReturnEdge builds the return-site fact: only the call's result
// variable is bound, to the meet of the callee's return variables.
func (*ConstProp) TransferReturnEdge(e Edge, calleeExitOut *dataflow.CPFact) *dataflow.CPFact {
	fact := dataflow.NewCPFact()
	res := e.CallSite.Result
	if res == nil || !ir.IsIntLike(res.Type) {
		return fact
	}
	v := dataflow.Undef
	for _, rv := range e.RetVars {
		v = dataflow.MeetValue(v, calleeExitOut.Get(rv))
	}
	fact.Update(res, v)
	return fact
}
