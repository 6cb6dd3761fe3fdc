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

package constprop_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/dataflow/constprop"
	"go.uber.org/tarn/ir"
)

var intT = ir.PrimType{Kind: ir.Int}

// linearCFG chains the body statements of m with Normal edges between a
// synthetic entry and exit.
func linearCFG(m *ir.Method) *cfg.Graph {
	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	prev := ir.Stmt(entry)
	for _, s := range m.Stmts {
		g.AddEdge(cfg.Normal, prev, s)
		prev = s
	}
	g.AddEdge(cfg.Normal, prev, exit)
	return g
}

// TestDivisionByZero solves `a=10; b=0; c=a/b; return c` and expects c to be
// Undef at the return: a zero divisor signals Undef, not an error.
func TestDivisionByZero(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT)
	a := m.NewVar("a", intT)
	b := m.NewVar("b", intT)
	c := m.NewVar("c", intT)
	ret := &ir.Return{Vars: []*ir.Var{c}}
	m.SetBody(
		&ir.AssignLiteral{Result: a, Value: 10},
		&ir.AssignLiteral{Result: b, Value: 0},
		&ir.Binary{Result: c, Op: ir.Div, X: a, Y: b},
		ret,
	)

	res := constprop.Solve(context.Background(), linearCFG(m))
	out := res.OutOf(ret)
	require.Equal(t, dataflow.Const(10), out.Get(a))
	require.Equal(t, dataflow.Const(0), out.Get(b))
	require.Equal(t, dataflow.Undef, out.Get(c))
}

func TestNACDividendZeroDivisor(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT, intT)
	p := m.Params[0]
	z := m.NewVar("z", intT)
	q := m.NewVar("q", intT)
	div := &ir.Binary{Result: q, Op: ir.Rem, X: p, Y: z}
	m.SetBody(
		&ir.AssignLiteral{Result: z, Value: 0},
		div,
	)

	res := constprop.Solve(context.Background(), linearCFG(m))
	require.Equal(t, dataflow.Undef, res.OutOf(div).Get(q),
		"a zero divisor forces Undef even for a NAC dividend")
}

func TestNonIntDefsAreNotTracked(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	obj := ir.NewClass("Obj")
	m := cl.NewStaticMethod("f", nil)
	o := m.NewVar("o", obj.Type())
	n := m.NewVar("n", intT)
	alloc := &ir.New{Result: o, Type: obj.Type()}
	lit := &ir.AssignLiteral{Result: n, Value: 3}
	m.SetBody(alloc, lit)

	res := constprop.Solve(context.Background(), linearCFG(m))
	out := res.OutOf(lit)
	require.Equal(t, dataflow.Undef, out.Get(o), "reference variables carry no binding")
	require.Equal(t, dataflow.Const(3), out.Get(n))
}

func TestEvaluateArithmetic(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", nil)
	x := m.NewVar("x", intT)
	y := m.NewVar("y", intT)

	testcases := []struct {
		name string
		op   ir.BinaryOp
		x, y int32
		want int32
	}{
		{"add", ir.Add, 2, 3, 5},
		{"add wraps", ir.Add, math.MaxInt32, 1, math.MinInt32},
		{"sub wraps", ir.Sub, math.MinInt32, 1, math.MaxInt32},
		{"mul wraps", ir.Mul, 1 << 20, 1 << 20, 0},
		{"div truncates", ir.Div, -7, 2, -3},
		{"div overflow wraps", ir.Div, math.MinInt32, -1, math.MinInt32},
		{"rem", ir.Rem, -7, 2, -1},
		{"rem overflow", ir.Rem, math.MinInt32, -1, 0},
		{"shl mod 32", ir.Shl, 1, 33, 2},
		{"shr arithmetic", ir.Shr, -8, 1, -4},
		{"ushr logical", ir.Ushr, -1, 28, 15},
		{"and", ir.And, 0b1100, 0b1010, 0b1000},
		{"or", ir.Or, 0b1100, 0b1010, 0b1110},
		{"xor", ir.Xor, 0b1100, 0b1010, 0b0110},
		{"lt true", ir.Lt, 1, 2, 1},
		{"ge false", ir.Ge, 1, 2, 0},
		{"eq", ir.Eq, 4, 4, 1},
		{"ne", ir.Ne, 4, 4, 0},
	}
	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := dataflow.NewCPFact()
			in.Update(x, dataflow.Const(tc.x))
			in.Update(y, dataflow.Const(tc.y))
			got := constprop.Evaluate(ir.BinaryExp{Op: tc.op, X: x, Y: y}, in)
			require.Equal(t, dataflow.Const(tc.want), got)
		})
	}
}

func TestEvaluateLatticeCases(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", nil)
	x := m.NewVar("x", intT)
	y := m.NewVar("y", intT)

	in := dataflow.NewCPFact()
	in.Update(x, dataflow.NAC)

	require.Equal(t, dataflow.NAC,
		constprop.Evaluate(ir.BinaryExp{Op: ir.Add, X: x, Y: y}, in),
		"NAC operand yields NAC")

	in2 := dataflow.NewCPFact()
	in2.Update(x, dataflow.Const(1))
	require.Equal(t, dataflow.Undef,
		constprop.Evaluate(ir.BinaryExp{Op: ir.Add, X: x, Y: y}, in2),
		"Undef operand yields Undef")

	require.Equal(t, dataflow.NAC,
		constprop.Evaluate(ir.NewExp{}, in2),
		"untracked expression shapes default to NAC")

	neg := constprop.Evaluate(ir.UnaryExp{Op: ir.Neg, X: x}, in2)
	require.Equal(t, dataflow.Const(-1), neg)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
