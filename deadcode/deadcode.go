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

// Package deadcode detects dead statements in one method by combining three
// views: control-flow unreachable nodes, branches constant propagation
// proves infeasible, and assignments whose target live-variable analysis
// proves unread and whose right-hand side has no side effect.
package deadcode

import (
	"github.com/willf/bitset"

	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/dataflow/constprop"
	"go.uber.org/tarn/ir"
)

// Detect returns the dead statements of g's method in statement-index order.
// cp and live are the constant-propagation and live-variable fixpoints of
// the same graph. Synthetic nodes (entry/exit markers outside the method
// body) are never reported.
func Detect(g *cfg.Graph, cp *dataflow.Result[*dataflow.CPFact], live *dataflow.Result[*dataflow.SetFact[*ir.Var]]) []ir.Stmt {
	body := g.Method.Stmts
	dead := bitset.New(uint(len(body)))
	mark := func(s ir.Stmt) {
		if s.Container() == g.Method {
			dead.Set(uint(s.Index()))
		}
	}

	markUnreachable(g, mark)
	markInfeasibleBranches(g, cp, mark)
	markDeadAssignments(g, live, mark)

	var stmts []ir.Stmt
	for i, ok := dead.NextSet(0); ok; i, ok = dead.NextSet(i + 1) {
		stmts = append(stmts, body[i])
	}
	return stmts
}

// markUnreachable marks every non-entry node no edge reaches.
func markUnreachable(g *cfg.Graph, mark func(ir.Stmt)) {
	for _, n := range g.Nodes() {
		if n != g.Entry() && len(g.PredsOf(n)) == 0 {
			mark(n)
		}
	}
}

// markInfeasibleBranches evaluates If and Switch statements whose operands
// are constants at the branch point and marks the branches that can never be
// taken.
func markInfeasibleBranches(g *cfg.Graph, cp *dataflow.Result[*dataflow.CPFact], mark func(ir.Stmt)) {
	for _, n := range g.Nodes() {
		out := cp.OutOf(n)
		switch s := n.(type) {
		case *ir.If:
			if !out.Get(s.Cond.X).IsConst() || !out.Get(s.Cond.Y).IsConst() {
				continue
			}
			deadKind := cfg.IfTrue
			if v := constprop.Evaluate(s.Cond, out); v.Constant() != 0 {
				deadKind = cfg.IfFalse
			}
			for _, e := range g.OutEdgesOf(n) {
				if e.Kind == deadKind {
					markChain(g, e.Target, mark)
				}
			}
		case *ir.Switch:
			key := out.Get(s.Key)
			if !key.IsConst() {
				continue
			}
			matched := false
			for _, e := range g.OutEdgesOf(n) {
				if e.Kind != cfg.SwitchCase {
					continue
				}
				if e.CaseValue == key.Constant() {
					matched = true
				} else {
					markChain(g, e.Target, mark)
				}
			}
			if matched {
				for _, e := range g.OutEdgesOf(n) {
					if e.Kind == cfg.SwitchDefault {
						markChain(g, e.Target, mark)
					}
				}
			}
		}
	}
}

// markChain walks a dead branch from its target, marking statements while
// the chain stays linear. A node with more than one predecessor is a join
// reachable from live code, so the walk stops there; it also stops at the
// exit and after any node that branches.
func markChain(g *cfg.Graph, start ir.Stmt, mark func(ir.Stmt)) {
	for cur := start; ; {
		if cur == g.Exit() || len(g.PredsOf(cur)) != 1 {
			return
		}
		mark(cur)
		succs := g.SuccsOf(cur)
		if len(succs) != 1 {
			return
		}
		cur = succs[0]
	}
}

// markDeadAssignments marks assignments whose target is not live afterwards
// and whose right-hand side cannot have a side effect.
func markDeadAssignments(g *cfg.Graph, live *dataflow.Result[*dataflow.SetFact[*ir.Var]], mark func(ir.Stmt)) {
	for _, n := range g.Nodes() {
		d, ok := n.(ir.Definition)
		if !ok {
			continue
		}
		if _, isCall := n.(*ir.Invoke); isCall {
			// The call happens whether or not its result is read.
			continue
		}
		v, has := d.Def()
		if !has || live.OutOf(n).Contains(v) {
			continue
		}
		if !hasSideEffect(d.RValue()) {
			mark(n)
		}
	}
}

// hasSideEffect reports whether evaluating e can be observed beyond its
// value: allocations, casts, field and array accesses can fault or allocate,
// and division/remainder can trap on a zero divisor.
func hasSideEffect(e ir.Exp) bool {
	switch e := e.(type) {
	case ir.NewExp, ir.CastExp, ir.FieldAccess, ir.ArrayAccess, ir.InvokeExp:
		return true
	case ir.BinaryExp:
		return e.Op == ir.Div || e.Op == ir.Rem
	}
	return false
}
