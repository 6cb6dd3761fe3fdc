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

// Package orderedmap implements a generic map that supports iteration in
// insertion order. The analyses use it where plain map iteration order
// could leak into analysis results: constant-propagation fact maps and the
// call graph's reachable-method set.
package orderedmap

// Pair is a key-value pair stored in the ordered map.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// OrderedMap is a map that iterates in insertion order. Storing an existing
// key overwrites its value in place and keeps its original position.
type OrderedMap[K comparable, V any] struct {
	pairs []*Pair[K, V]
	inner map[K]*Pair[K, V]
}

// New creates a new OrderedMap.
func New[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{inner: make(map[K]*Pair[K, V])}
}

// Len returns the number of entries in the map.
func (m *OrderedMap[K, V]) Len() int { return len(m.pairs) }

// Value returns the value stored for key, or the zero value if key is not
// present. It is Load without the additional bool.
func (m *OrderedMap[K, V]) Value(key K) V {
	if p := m.inner[key]; p != nil {
		return p.Value
	}
	var v V
	return v
}

// Load returns the value stored for key, with an additional bool indicating
// whether the key was found.
func (m *OrderedMap[K, V]) Load(key K) (V, bool) {
	if p := m.inner[key]; p != nil {
		return p.Value, true
	}
	var v V
	return v, false
}

// Store stores the value for key, overwriting the previous value if the key
// exists.
func (m *OrderedMap[K, V]) Store(key K, value V) {
	if p := m.inner[key]; p != nil {
		p.Value = value
		return
	}
	p := &Pair[K, V]{Key: key, Value: value}
	m.pairs = append(m.pairs, p)
	m.inner[key] = p
}

// Delete removes key from the map. Deleting an absent key is a no-op.
func (m *OrderedMap[K, V]) Delete(key K) {
	p := m.inner[key]
	if p == nil {
		return
	}
	delete(m.inner, key)
	for i, q := range m.pairs {
		if q == p {
			m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
			return
		}
	}
}

// Range calls f for each entry in insertion order. If f returns false, Range
// stops the iteration.
func (m *OrderedMap[K, V]) Range(f func(key K, value V) bool) {
	for _, p := range m.pairs {
		if !f(p.Key, p.Value) {
			return
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}
