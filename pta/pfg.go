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

package pta

import (
	"golang.org/x/tools/container/intsets"

	"go.uber.org/tarn/ir"
)

// Pointer node identities. Each is a small comparable key; the PFG interns
// keys into dense node ids and stores adjacency and points-to sets in
// parallel slices, so the cyclic graph carries no cyclic ownership.

type varPtr struct {
	ctx *Context
	v   *ir.Var
}

type instanceFieldPtr struct {
	obj   *CSObj
	field *ir.FieldRef
}

type arrayIndexPtr struct {
	obj *CSObj
}

type staticFieldPtr struct {
	field *ir.FieldRef
}

type edgeKey struct {
	src, dst int
}

// PFG is the pointer flow graph: one node per pointer, one directed edge per
// inclusion constraint, and the current points-to set of every node as a
// sparse set of object ids.
type PFG struct {
	ids   map[any]int
	keys  []any
	succs [][]int
	edges map[edgeKey]bool
	pts   []*intsets.Sparse
}

func newPFG() *PFG {
	return &PFG{ids: make(map[any]int), edges: make(map[edgeKey]bool)}
}

// nodeOf interns key into a node id.
func (g *PFG) nodeOf(key any) int {
	if id, ok := g.ids[key]; ok {
		return id
	}
	id := len(g.keys)
	g.ids[key] = id
	g.keys = append(g.keys, key)
	g.succs = append(g.succs, nil)
	g.pts = append(g.pts, &intsets.Sparse{})
	return id
}

// addEdge inserts src -> dst and reports whether the edge was new.
// Duplicate edges and self-loops are no-ops.
func (g *PFG) addEdge(src, dst int) bool {
	if src == dst {
		return false
	}
	key := edgeKey{src, dst}
	if g.edges[key] {
		return false
	}
	g.edges[key] = true
	g.succs[src] = append(g.succs[src], dst)
	return true
}

func (g *PFG) keyOf(id int) any { return g.keys[id] }

func (g *PFG) ptsOf(id int) *intsets.Sparse { return g.pts[id] }

func (g *PFG) succsOf(id int) []int { return g.succs[id] }

// NumNodes returns the number of pointers in the graph.
func (g *PFG) NumNodes() int { return len(g.keys) }

// NumEdges returns the number of distinct edges in the graph.
func (g *PFG) NumEdges() int { return len(g.edges) }

// HasEdge reports whether the graph contains an edge between the nodes with
// the given ids.
func (g *PFG) HasEdge(src, dst int) bool { return g.edges[edgeKey{src, dst}] }
