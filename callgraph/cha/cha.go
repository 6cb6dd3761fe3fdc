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

// Package cha builds a call graph by class-hierarchy analysis: a worklist of
// methods seeded with the entry, resolving every call site against the class
// hierarchy alone.
package cha

import (
	"go.uber.org/tarn/callgraph"
	"go.uber.org/tarn/hierarchy"
	"go.uber.org/tarn/ir"
)

// Build constructs the CHA call graph of the program rooted at entry.
func Build(entry *ir.Method, h *hierarchy.Hierarchy) *callgraph.Graph {
	g := callgraph.New()
	g.AddEntry(entry)
	work := []*ir.Method{entry}
	for len(work) > 0 {
		m := work[0]
		work = work[1:]
		if !g.AddReachable(m) {
			continue
		}
		for _, site := range m.CallSites() {
			for _, callee := range h.Resolve(site) {
				g.AddEdge(callgraph.Edge{Kind: site.Kind, CallSite: site, Callee: callee})
				work = append(work, callee)
			}
		}
	}
	return g
}
