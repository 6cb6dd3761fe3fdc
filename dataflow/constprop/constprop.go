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

// Package constprop implements intraprocedural integer constant propagation
// over the flat constant lattice. Only variables of int-like primitive types
// are tracked; arithmetic follows 32-bit two's-complement semantics with
// wrapping add/sub/mul, truncating division, and shift counts taken modulo
// 32.
package constprop

import (
	"context"
	"math"

	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/ir"
)

// Solve runs constant propagation over g.
func Solve(ctx context.Context, g *cfg.Graph) *dataflow.Result[*dataflow.CPFact] {
	return dataflow.Solve[*dataflow.CPFact](ctx, New(), g)
}

// Analysis is the constant-propagation instantiation of the dataflow solver.
type Analysis struct{}

// New returns the analysis.
func New() *Analysis { return &Analysis{} }

// IsForward reports true.
func (*Analysis) IsForward() bool { return true }

// NewBoundaryFact binds every int-like formal parameter of the method to
// NAC: a parameter may hold any value the callers pass.
func (*Analysis) NewBoundaryFact(g *cfg.Graph) *dataflow.CPFact {
	fact := dataflow.NewCPFact()
	if g.Method != nil {
		for _, p := range g.Method.Params {
			if ir.IsIntLike(p.Type) {
				fact.Update(p, dataflow.NAC)
			}
		}
	}
	return fact
}

// NewInitialFact returns the empty fact; every variable is implicitly Undef.
func (*Analysis) NewInitialFact() *dataflow.CPFact {
	return dataflow.NewCPFact()
}

// MeetInto meets fact into target pointwise.
func (*Analysis) MeetInto(fact, target *dataflow.CPFact) {
	fact.MeetInto(target)
}

// TransferNode evaluates a definition of an int-like variable and copies
// everything else through unchanged. It reports whether out changed.
func (*Analysis) TransferNode(s ir.Stmt, in, out *dataflow.CPFact) bool {
	tmp := in.Copy()
	if d, ok := s.(ir.Definition); ok {
		if v, has := d.Def(); has && ir.IsIntLike(v.Type) {
			tmp.Update(v, Evaluate(d.RValue(), in))
		}
	}
	return out.CopyFrom(tmp)
}

// Evaluate computes the lattice value of expression e under the fact in.
// Expression shapes the lattice cannot track (loads, allocations, casts,
// calls) evaluate to NAC.
func Evaluate(e ir.Exp, in *dataflow.CPFact) dataflow.Value {
	switch e := e.(type) {
	case ir.IntLiteral:
		return dataflow.Const(int32(e))
	case *ir.Var:
		return evalVar(e, in)
	case ir.BinaryExp:
		return evalBinary(e, in)
	case ir.UnaryExp:
		x := evalVar(e.X, in)
		switch {
		case x.IsConst():
			return dataflow.Const(-x.Constant())
		case x.IsNAC():
			return dataflow.NAC
		default:
			return dataflow.Undef
		}
	default:
		return dataflow.NAC
	}
}

func evalVar(v *ir.Var, in *dataflow.CPFact) dataflow.Value {
	if !ir.IsIntLike(v.Type) {
		return dataflow.NAC
	}
	return in.Get(v)
}

func evalBinary(e ir.BinaryExp, in *dataflow.CPFact) dataflow.Value {
	x := evalVar(e.X, in)
	y := evalVar(e.Y, in)
	// Division and remainder signal Undef whenever the divisor is the
	// constant zero, even for a NAC dividend.
	if (e.Op == ir.Div || e.Op == ir.Rem) && y.IsConst() && y.Constant() == 0 {
		return dataflow.Undef
	}
	switch {
	case x.IsConst() && y.IsConst():
		return dataflow.Const(compute(e.Op, x.Constant(), y.Constant()))
	case x.IsNAC() || y.IsNAC():
		return dataflow.NAC
	default:
		return dataflow.Undef
	}
}

func compute(op ir.BinaryOp, x, y int32) int32 {
	switch op {
	case ir.Add:
		return x + y
	case ir.Sub:
		return x - y
	case ir.Mul:
		return x * y
	case ir.Div:
		// The one overflowing quotient wraps instead of trapping.
		if x == math.MinInt32 && y == -1 {
			return math.MinInt32
		}
		return x / y
	case ir.Rem:
		if x == math.MinInt32 && y == -1 {
			return 0
		}
		return x % y
	case ir.Shl:
		return x << (uint32(y) & 31)
	case ir.Shr:
		return x >> (uint32(y) & 31)
	case ir.Ushr:
		return int32(uint32(x) >> (uint32(y) & 31))
	case ir.And:
		return x & y
	case ir.Or:
		return x | y
	case ir.Xor:
		return x ^ y
	case ir.Eq:
		return b2i(x == y)
	case ir.Ne:
		return b2i(x != y)
	case ir.Lt:
		return b2i(x < y)
	case ir.Gt:
		return b2i(x > y)
	case ir.Le:
		return b2i(x <= y)
	case ir.Ge:
		return b2i(x >= y)
	}
	panic("constprop: unknown binary operator")
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
