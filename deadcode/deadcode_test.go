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

package deadcode_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/dataflow/constprop"
	"go.uber.org/tarn/dataflow/livevars"
	"go.uber.org/tarn/deadcode"
	"go.uber.org/tarn/ir"
)

var intT = ir.PrimType{Kind: ir.Int}

func detect(t *testing.T, g *cfg.Graph) []ir.Stmt {
	t.Helper()
	cp := constprop.Solve(context.Background(), g)
	live := livevars.Solve(context.Background(), g)
	return deadcode.Detect(g, cp, live)
}

// TestConstantBranch checks `a=1; b=2; if (a<b) x=1 else x=2; return x`:
// the false branch is dead, everything else is alive.
func TestConstantBranch(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT)
	a := m.NewVar("a", intT)
	b := m.NewVar("b", intT)
	x := m.NewVar("x", intT)
	sa := &ir.AssignLiteral{Result: a, Value: 1}
	sb := &ir.AssignLiteral{Result: b, Value: 2}
	sif := &ir.If{Cond: ir.BinaryExp{Op: ir.Lt, X: a, Y: b}}
	sx1 := &ir.AssignLiteral{Result: x, Value: 1}
	sx2 := &ir.AssignLiteral{Result: x, Value: 2}
	ret := &ir.Return{Vars: []*ir.Var{x}}
	m.SetBody(sa, sb, sif, sx1, sx2, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sa)
	g.AddEdge(cfg.Normal, sa, sb)
	g.AddEdge(cfg.Normal, sb, sif)
	g.AddEdge(cfg.IfTrue, sif, sx1)
	g.AddEdge(cfg.IfFalse, sif, sx2)
	g.AddEdge(cfg.Normal, sx1, ret)
	g.AddEdge(cfg.Normal, sx2, ret)
	g.AddEdge(cfg.Normal, ret, exit)

	require.Equal(t, []ir.Stmt{sx2}, detect(t, g))
}

// TestDeadAssignment checks `x=1; y=2; return x`: the assignment to y has
// no side effect and y is never live.
func TestDeadAssignment(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT)
	x := m.NewVar("x", intT)
	y := m.NewVar("y", intT)
	sx := &ir.AssignLiteral{Result: x, Value: 1}
	sy := &ir.AssignLiteral{Result: y, Value: 2}
	ret := &ir.Return{Vars: []*ir.Var{x}}
	m.SetBody(sx, sy, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sx)
	g.AddEdge(cfg.Normal, sx, sy)
	g.AddEdge(cfg.Normal, sy, ret)
	g.AddEdge(cfg.Normal, ret, exit)

	require.Equal(t, []ir.Stmt{sy}, detect(t, g))
}

// TestDivisionIsNotDead checks that an unread quotient survives: division
// can trap, so the assignment keeps its side effect.
func TestDivisionIsNotDead(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT, intT)
	p := m.Params[0]
	q := m.NewVar("q", intT)
	x := m.NewVar("x", intT)
	sq := &ir.Binary{Result: q, Op: ir.Div, X: x, Y: p}
	sx := &ir.AssignLiteral{Result: x, Value: 1}
	ret := &ir.Return{Vars: []*ir.Var{x}}
	m.SetBody(sx, sq, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sx)
	g.AddEdge(cfg.Normal, sx, sq)
	g.AddEdge(cfg.Normal, sq, ret)
	g.AddEdge(cfg.Normal, ret, exit)

	require.Empty(t, detect(t, g))
}

func TestUnreachableNode(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", nil)
	x := m.NewVar("x", intT)
	sx := &ir.AssignLiteral{Result: x, Value: 1}
	orphan := &ir.Goto{}
	ret := &ir.Return{}
	m.SetBody(sx, orphan, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sx)
	g.AddEdge(cfg.Normal, sx, ret)
	g.AddEdge(cfg.Normal, ret, exit)
	g.AddNode(orphan)

	dead := detect(t, g)
	require.Contains(t, dead, ir.Stmt(orphan))
	// The dead assignment to x is reported too; the set is ordered by
	// statement index.
	require.Equal(t, []ir.Stmt{sx, orphan}, dead)
}

// TestConstantSwitch checks that with a constant selector matching one
// case, the other cases and the default chain are dead.
func TestConstantSwitch(t *testing.T) {
	t.Parallel()

	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT)
	k := m.NewVar("k", intT)
	x := m.NewVar("x", intT)
	sk := &ir.AssignLiteral{Result: k, Value: 2}
	sw := &ir.Switch{Key: k, CaseValues: []int32{1, 2}}
	c1 := &ir.Copy{Result: x, RHS: k}
	c2 := &ir.Copy{Result: x, RHS: k}
	def := &ir.Copy{Result: x, RHS: k}
	ret := &ir.Return{Vars: []*ir.Var{x}}
	m.SetBody(sk, sw, c1, c2, def, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sk)
	g.AddEdge(cfg.Normal, sk, sw)
	g.AddCaseEdge(sw, c1, 1)
	g.AddCaseEdge(sw, c2, 2)
	g.AddEdge(cfg.SwitchDefault, sw, def)
	g.AddEdge(cfg.Normal, c1, ret)
	g.AddEdge(cfg.Normal, c2, ret)
	g.AddEdge(cfg.Normal, def, ret)
	g.AddEdge(cfg.Normal, ret, exit)

	require.Equal(t, []ir.Stmt{c1, def}, detect(t, g))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
