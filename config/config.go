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

// Package config holds the user-facing options of an analysis run. The
// surrounding driver parses whatever configuration surface it has (flags,
// files) into an Options value; the core only reads it.
package config

// DefaultContextPolicy is the pointer-analysis sensitivity used when the
// options leave it empty. Two call-site levels is the usual
// precision/scalability trade-off for call-site sensitivity.
const DefaultContextPolicy = "2-call"

// Options selects what to analyze and how.
type Options struct {
	// EntryMethod is the signature of the method the compilation closure is
	// rooted at, e.g. "Main: void main()". Empty is a configuration error
	// the driver must reject before reaching the core.
	EntryMethod string

	// ContextPolicy is the pointer-analysis context sensitivity: "ci", or
	// "<k>-call", "<k>-obj", "<k>-type". Empty selects
	// DefaultContextPolicy.
	ContextPolicy string
}

// Policy returns the effective context policy.
func (o Options) Policy() string {
	if o.ContextPolicy == "" {
		return DefaultContextPolicy
	}
	return o.ContextPolicy
}
