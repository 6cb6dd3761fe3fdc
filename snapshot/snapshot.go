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

// Package snapshot flattens analysis results into serializable artifacts:
// methods and call sites become signatures and statement indexes, and the
// payload is gob-encoded behind s2 compression. Consumers cache these
// artifacts between runs; they carry no live IR pointers.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/klauspost/compress/s2"

	"go.uber.org/tarn/callgraph"
	"go.uber.org/tarn/dataflow"
	"go.uber.org/tarn/ir"
)

// CallGraph is the serializable projection of a call graph.
type CallGraph struct {
	Entries   []string
	Reachable []string
	Edges     []CallEdge
}

// CallEdge identifies one call edge by the caller's signature, the call
// site's statement index within the caller, and the callee's signature.
type CallEdge struct {
	Kind      string
	Caller    string
	SiteIndex int
	Callee    string
}

// EncodeCallGraph flattens g and encodes it.
func EncodeCallGraph(g *callgraph.Graph) ([]byte, error) {
	snap := &CallGraph{}
	for _, m := range g.Entries() {
		snap.Entries = append(snap.Entries, m.Signature())
	}
	for _, m := range g.Reachable() {
		snap.Reachable = append(snap.Reachable, m.Signature())
	}
	for _, e := range g.Edges() {
		snap.Edges = append(snap.Edges, CallEdge{
			Kind:      e.Kind.String(),
			Caller:    e.CallSite.Container().Signature(),
			SiteIndex: e.CallSite.Index(),
			Callee:    e.Callee.Signature(),
		})
	}
	return encode(snap)
}

// DecodeCallGraph decodes a call-graph artifact.
func DecodeCallGraph(b []byte) (*CallGraph, error) {
	var snap CallGraph
	if err := decode(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Facts is the serializable projection of a constant-propagation result for
// one method: the OUT fact of each body statement, by statement index.
type Facts struct {
	Method string
	Out    map[int]map[string]string
}

// EncodeFacts flattens the OUT facts of m's body statements and encodes
// them.
func EncodeFacts(m *ir.Method, r *dataflow.Result[*dataflow.CPFact]) ([]byte, error) {
	snap := &Facts{Method: m.Signature(), Out: make(map[int]map[string]string)}
	for _, s := range m.Stmts {
		out := r.OutOf(s)
		if out == nil {
			continue
		}
		bindings := make(map[string]string)
		out.Range(func(v *ir.Var, val dataflow.Value) bool {
			bindings[v.Name] = val.String()
			return true
		})
		snap.Out[s.Index()] = bindings
	}
	return encode(snap)
}

// DecodeFacts decodes a facts artifact.
func DecodeFacts(b []byte) (*Facts, error) {
	var snap Facts
	if err := decode(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func encode(v any) (b []byte, err error) {
	var buf bytes.Buffer
	w := s2.NewWriter(&buf)
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return nil, err
	}

	// Close the s2 writer before taking the bytes so the payload is
	// complete.
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(b []byte, v any) error {
	return gob.NewDecoder(s2.NewReader(bytes.NewReader(b))).Decode(v)
}
