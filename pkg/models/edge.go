/*
 * Copyright 2026 The Discoveryd Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

// Edge is one undirected link in the topology graph. (A, IfA) and (B, IfB)
// are the two endpoints; Edge(a,b,ia,ib) and Edge(b,a,ib,ia) are the same
// element and only one is ever kept.
type Edge struct {
	A     string
	B     string
	IfA   string
	IfB   string
}

// reverseOf reports whether other is the reverse of e: same endpoints,
// same interfaces, swapped.
func (e Edge) reverseOf(other Edge) bool {
	return e.A == other.B && e.B == other.A && e.IfA == other.IfB && e.IfB == other.IfA
}

// EdgeSet is an undirected, duplicate-free, self-loop-free collection of
// Edges, built incrementally by the topology builder.
type EdgeSet struct {
	edges []Edge
}

// NewEdgeSet returns an empty EdgeSet.
func NewEdgeSet() *EdgeSet {
	return &EdgeSet{}
}

// Add inserts e unless a self-loop, an exact duplicate, or the reverse of
// an existing edge is already present. It reports whether the edge was
// newly inserted.
func (s *EdgeSet) Add(e Edge) bool {
	if e.A == e.B {
		return false
	}

	for _, existing := range s.edges {
		if existing == e || e.reverseOf(existing) {
			return false
		}
	}

	s.edges = append(s.edges, e)

	return true
}

// Edges returns the accumulated edge slice.
func (s *EdgeSet) Edges() []Edge {
	return s.edges
}
