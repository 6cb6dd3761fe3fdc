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

// Package tarn is the analytic core of a whole-program static analyzer for
// a class-based bytecode-like IR. It exposes the analysis entry points:
// class-hierarchy call-graph construction, the intraprocedural dataflow
// analyses (live variables, constant propagation) and their composition
// into dead-code detection, interprocedural constant propagation over the
// ICFG, and Andersen-style pointer analysis in context-insensitive and
// context-sensitive flavors. IR loading, CFG construction from bytecode and
// result reporting are the caller's concern.
package tarn

import (
	"context"
	"errors"

	"go.uber.org/tarn/callgraph"
	"go.uber.org/tarn/callgraph/cha"
	"go.uber.org/tarn/cfg"
	"go.uber.org/tarn/config"
	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/dataflow/constprop"
	"go.uber.org/tarn/dataflow/livevars"
	"go.uber.org/tarn/deadcode"
	"go.uber.org/tarn/hierarchy"
	"go.uber.org/tarn/interproc"
	"go.uber.org/tarn/ir"
	"go.uber.org/tarn/pta"
)

// BuildCHA constructs the class-hierarchy-analysis call graph of the
// program rooted at entry.
func BuildCHA(entry *ir.Method, h *hierarchy.Hierarchy) (*callgraph.Graph, error) {
	if entry == nil {
		return nil, errors.New("tarn: nil entry method")
	}
	if h == nil {
		return nil, errors.New("tarn: nil class hierarchy")
	}
	return cha.Build(entry, h), nil
}

// SolveLiveVars runs live-variable analysis over g.
func SolveLiveVars(ctx context.Context, g *cfg.Graph) *dataflow.Result[*dataflow.SetFact[*ir.Var]] {
	return livevars.Solve(ctx, g)
}

// SolveConstants runs intraprocedural constant propagation over g.
func SolveConstants(ctx context.Context, g *cfg.Graph) *dataflow.Result[*dataflow.CPFact] {
	return constprop.Solve(ctx, g)
}

// DetectDeadCode combines the constant-propagation and live-variable
// fixpoints of g into the set of dead statements, ordered by statement
// index.
func DetectDeadCode(g *cfg.Graph, cp *dataflow.Result[*dataflow.CPFact], live *dataflow.Result[*dataflow.SetFact[*ir.Var]]) []ir.Stmt {
	return deadcode.Detect(g, cp, live)
}

// BuildICFG overlays the per-method CFGs with the call and return edges of
// cg.
func BuildICFG(cg *callgraph.Graph, cfgs map[*ir.Method]*cfg.Graph) *interproc.Graph {
	return interproc.Build(cg, cfgs)
}

// SolveInterCP runs interprocedural constant propagation over the ICFG.
func SolveInterCP(ctx context.Context, g *interproc.Graph) *dataflow.Result[*dataflow.CPFact] {
	return interproc.SolveConstProp(ctx, g)
}

// RunPointerAnalysisCI runs context-insensitive pointer analysis from
// entry. A nil heap model selects the allocation-site abstraction.
func RunPointerAnalysisCI(ctx context.Context, entry *ir.Method, heap pta.HeapModel, h *hierarchy.Hierarchy) (*pta.Result, error) {
	return pta.RunCI(ctx, entry, heap, h)
}

// RunPointerAnalysisCS runs context-sensitive pointer analysis from entry
// under the given selector.
func RunPointerAnalysisCS(ctx context.Context, entry *ir.Method, heap pta.HeapModel, h *hierarchy.Hierarchy, selector pta.ContextSelector) (*pta.Result, error) {
	return pta.RunCS(ctx, entry, heap, h, selector)
}

// NewSelector returns the context selector the options name.
func NewSelector(opts config.Options) (pta.ContextSelector, error) {
	return pta.ParseSelector(opts.Policy())
}
