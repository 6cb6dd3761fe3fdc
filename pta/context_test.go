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

package pta_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/tarn/pta"
)

func TestContextInterning(t *testing.T) {
	t.Parallel()

	root := pta.NewEmptyContext()
	c1 := root.Append("s1", 2)
	c2 := root.Append("s1", 2)
	require.Same(t, c1, c2, "equal element sequences intern to the same context")
	require.Equal(t, 1, c1.Depth())
	require.Equal(t, []any{"s1"}, c1.Elems())
}

func TestContextKLimiting(t *testing.T) {
	t.Parallel()

	root := pta.NewEmptyContext()
	c := root.Append("a", 2).Append("b", 2).Append("c", 2)
	require.Equal(t, []any{"b", "c"}, c.Elems(), "the oldest element falls off at k=2")

	limited := c.Limit(1)
	require.Equal(t, []any{"c"}, limited.Elems())
	require.Same(t, limited, root.Append("c", 1))

	require.Same(t, c, c.Limit(5), "a limit at or above the depth is the identity")
	require.Equal(t, 0, c.Limit(0).Depth())
}

func TestParseSelector(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		policy string
		want   any
		ok     bool
	}{
		{"ci", &pta.Insensitive{}, true},
		{"2-call", &pta.KCallSelector{}, true},
		{"1-obj", &pta.KObjSelector{}, true},
		{"3-type", &pta.KTypeSelector{}, true},
		{"0-call", nil, false},
		{"call", nil, false},
		{"banana", nil, false},
	}
	for _, tc := range testcases {
		tc := tc
		t.Run(tc.policy, func(t *testing.T) {
			t.Parallel()
			sel, err := pta.ParseSelector(tc.policy)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.IsType(t, tc.want, sel)
		})
	}
}
