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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeSet_FoldsReverse(t *testing.T) {
	t.Parallel()

	s := NewEdgeSet()

	added := s.Add(Edge{A: "R1", B: "R2", IfA: "Gi0/0", IfB: "Gi0/1"})
	assert.True(t, added)

	added = s.Add(Edge{A: "R2", B: "R1", IfA: "Gi0/1", IfB: "Gi0/0"})
	assert.False(t, added, "reverse claim should fold into the existing edge")

	assert.Len(t, s.Edges(), 1)
}

func TestEdgeSet_RejectsSelfLoop(t *testing.T) {
	t.Parallel()

	s := NewEdgeSet()
	assert.False(t, s.Add(Edge{A: "R1", B: "R1", IfA: "Gi0/0", IfB: "Gi0/0"}))
	assert.Empty(t, s.Edges())
}

func TestEdgeSet_RejectsExactDuplicate(t *testing.T) {
	t.Parallel()

	s := NewEdgeSet()
	assert.True(t, s.Add(Edge{A: "R1", B: "R2", IfA: "Gi0/0", IfB: "Gi0/1"}))
	assert.False(t, s.Add(Edge{A: "R1", B: "R2", IfA: "Gi0/0", IfB: "Gi0/1"}))
	assert.Len(t, s.Edges(), 1)
}
