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

package livevars_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/dataflow/livevars"
	"go.uber.org/tarn/ir"
)

var intT = ir.PrimType{Kind: ir.Int}

func TestStraightLineLiveness(t *testing.T) {
	t.Parallel()

	// x = 1; y = 2; r = x + x; return r
	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("f", intT)
	x := m.NewVar("x", intT)
	y := m.NewVar("y", intT)
	r := m.NewVar("r", intT)
	sx := &ir.AssignLiteral{Result: x, Value: 1}
	sy := &ir.AssignLiteral{Result: y, Value: 2}
	sr := &ir.Binary{Result: r, Op: ir.Add, X: x, Y: x}
	ret := &ir.Return{Vars: []*ir.Var{r}}
	m.SetBody(sx, sy, sr, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sx)
	g.AddEdge(cfg.Normal, sx, sy)
	g.AddEdge(cfg.Normal, sy, sr)
	g.AddEdge(cfg.Normal, sr, ret)
	g.AddEdge(cfg.Normal, ret, exit)

	res := livevars.Solve(context.Background(), g)
	require.False(t, res.Incomplete)

	require.True(t, res.OutOf(sx).Contains(x), "x is read later")
	require.False(t, res.OutOf(sy).Contains(y), "y is never read")
	require.True(t, res.OutOf(sr).Contains(r))
	require.False(t, res.OutOf(sr).Contains(x), "x is dead after its last use")
	require.Equal(t, 0, res.OutOf(ret).Len(), "nothing is live after the return")
}

func TestBranchLiveness(t *testing.T) {
	t.Parallel()

	// if (p != p) r = a else r = b; return r
	cl := ir.NewClass("Main")
	m := cl.NewStaticMethod("g", intT, intT, intT, intT)
	p, a, b := m.Params[0], m.Params[1], m.Params[2]
	r := m.NewVar("r", intT)
	sif := &ir.If{Cond: ir.BinaryExp{Op: ir.Ne, X: p, Y: p}}
	sa := &ir.Copy{Result: r, RHS: a}
	sb := &ir.Copy{Result: r, RHS: b}
	ret := &ir.Return{Vars: []*ir.Var{r}}
	m.SetBody(sif, sa, sb, ret)

	g := cfg.New(m)
	entry, exit := &ir.Nop{}, &ir.Nop{}
	g.SetEntry(entry)
	g.SetExit(exit)
	g.AddEdge(cfg.Normal, entry, sif)
	g.AddEdge(cfg.IfTrue, sif, sa)
	g.AddEdge(cfg.IfFalse, sif, sb)
	g.AddEdge(cfg.Normal, sa, ret)
	g.AddEdge(cfg.Normal, sb, ret)
	g.AddEdge(cfg.Normal, ret, exit)

	res := livevars.Solve(context.Background(), g)

	in := res.InOf(sif)
	require.True(t, in.Contains(p))
	require.True(t, in.Contains(a), "a may be read on the true branch")
	require.True(t, in.Contains(b), "b may be read on the false branch")
	require.False(t, in.Contains(r), "r is written before any read")

	require.True(t, res.OutOf(sa).Contains(r))
	require.False(t, res.OutOf(sa).Contains(b), "b is not read after the branch")
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
