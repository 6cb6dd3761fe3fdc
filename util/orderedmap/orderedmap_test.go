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

package orderedmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/tarn/util/orderedmap"
)

func TestLoadStore(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[string, int]()
	_, ok := m.Load("a")
	require.False(t, ok)
	require.Equal(t, 0, m.Value("a"))

	m.Store("a", 1)
	m.Store("b", 2)
	v, ok := m.Load("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, m.Value("b"))
	require.Equal(t, 2, m.Len())

	// Overwriting keeps the original position.
	m.Store("a", 42)
	require.Equal(t, 42, m.Value("a"))
	require.Equal(t, []string{"a", "b"}, m.Keys())
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("c", 3)

	m.Delete("b")
	require.Equal(t, 2, m.Len())
	require.Equal(t, []string{"a", "c"}, m.Keys())
	_, ok := m.Load("b")
	require.False(t, ok)

	// Deleting an absent key is a no-op.
	m.Delete("b")
	require.Equal(t, 2, m.Len())
}

func TestRangeOrder(t *testing.T) {
	t.Parallel()

	m := orderedmap.New[int, string]()
	for _, k := range []int{5, 3, 9, 1} {
		m.Store(k, "")
	}

	var keys []int
	m.Range(func(k int, _ string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []int{5, 3, 9, 1}, keys)

	// Early termination.
	keys = nil
	m.Range(func(k int, _ string) bool {
		keys = append(keys, k)
		return len(keys) < 2
	})
	require.Equal(t, []int{5, 3}, keys)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
