// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package search

import (
	"testing"

	"github.com/avalanche-labs/bytehash/expr"
)

func TestEnumeratorFirstShapeIsBareLeaf(t *testing.T) {
	en := NewEnumerator()
	got, ok := en.Next()
	if !ok {
		t.Fatal("Next returned false on first pull")
	}
	if !got.IsLeaf() {
		t.Fatalf("first shape = %q, want the bare leaf", expr.String(got))
	}
}

func TestEnumeratorNeverRepeatsAShape(t *testing.T) {
	en := NewEnumerator()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		shape, ok := en.Next()
		if !ok {
			t.Fatalf("Next returned false early at pull %d", i)
		}
		key := expr.ShapeKey(shape)
		if seen[key] {
			t.Fatalf("shape %q repeated at pull %d", expr.String(shape), i)
		}
		seen[key] = true
	}
}

func TestEnumeratorIsBreadthFirst(t *testing.T) {
	en := NewEnumerator()
	lastLen := -1
	regressions := 0
	for i := 0; i < 200; i++ {
		shape, ok := en.Next()
		if !ok {
			t.Fatalf("Next returned false early at pull %d", i)
		}
		n := expr.Len(shape)
		if n < lastLen {
			regressions++
		}
		lastLen = n
	}
	// Every expansion adds exactly one leaf and the frontier is FIFO, so
	// Len never decreases in BFS order; the bound leaves slack but still
	// rejects a depth-first order (which would show far more regressions).
	if regressions > 50 {
		t.Fatalf("too many size regressions (%d) for breadth-first order", regressions)
	}
}

func TestEnumeratorFrontierHoldsFourAfterFirstPull(t *testing.T) {
	en := NewEnumerator()
	en.Next() // consume the bare leaf
	if en.Pending() != 4 {
		t.Fatalf("Pending after first pull = %d, want 4", en.Pending())
	}
}

func TestPermutationsProduceAllFourOperators(t *testing.T) {
	leaf := expr.Leaf(expr.Unit{})
	perms := permutations(leaf, 0, 0)
	if len(perms) != 4 {
		t.Fatalf("permutations(leaf) returned %d shapes, want 4", len(perms))
	}
	ops := map[expr.Op]bool{}
	for _, p := range perms {
		ops[p.Op()] = true
	}
	for _, op := range []expr.Op{expr.Add, expr.Xor, expr.RotLeft, expr.RotRight} {
		if !ops[op] {
			t.Fatalf("permutations(leaf) missing operator %v", op)
		}
	}
}

func TestLeafPathFindsShallowestLeaf(t *testing.T) {
	// ((leaf op leaf) op leaf): the bare right leaf is strictly shallower
	// than either leaf under the left subtree.
	inner := expr.Bin(expr.Add, expr.Leaf(expr.Unit{}), expr.Leaf(expr.Unit{}))
	tree := expr.Bin(expr.Xor, inner, expr.Leaf(expr.Unit{}))

	depth, path := leafPath(tree)
	if depth != 1 {
		t.Fatalf("depth = %d, want 1", depth)
	}
	if path&1 != 1 {
		t.Fatalf("path = %b, want low bit set (right child)", path)
	}
}
