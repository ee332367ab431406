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

// Package search enumerates expression shapes breadth-first and tags
// them with concrete leaves. See bfs.go for the enumerator and tag.go
// for the tagger.
package search

import "github.com/avalanche-labs/bytehash/expr"

// Enumerator produces shapes (expr.Expr[expr.Unit]) in breadth-first
// order: a FIFO frontier plus a visited set keyed by expr.ShapeKey, so no
// shape is yielded twice even though expanding different shapes can
// reach the same one. The frontier starts as the single bare leaf.
type Enumerator struct {
	toVisit []*expr.Expr[expr.Unit]
	visited map[string]struct{}
}

// NewEnumerator returns an Enumerator seeded with the bare leaf shape.
func NewEnumerator() *Enumerator {
	return &Enumerator{
		toVisit: []*expr.Expr[expr.Unit]{expr.Leaf(expr.Unit{})},
		visited: make(map[string]struct{}),
	}
}

// Next pops the next unvisited shape off the frontier, enqueues every
// way of expanding its shallowest leaf into one of the four binary
// operators, and returns the popped shape. The second return is false
// once the frontier is empty (which in practice never happens: every
// pull enqueues at least as many shapes as it removes).
func (en *Enumerator) Next() (*expr.Expr[expr.Unit], bool) {
	var visiting *expr.Expr[expr.Unit]
	for {
		if len(en.toVisit) == 0 {
			return nil, false
		}
		visiting, en.toVisit = en.toVisit[0], en.toVisit[1:]
		key := expr.ShapeKey(visiting)
		if _, seen := en.visited[key]; !seen {
			en.visited[key] = struct{}{}
			break
		}
	}

	depth, path := leafPath(visiting)
	for _, next := range permutations(visiting, depth, path) {
		if _, seen := en.visited[expr.ShapeKey(next)]; !seen {
			en.toVisit = append(en.toVisit, next)
		}
	}
	return visiting, true
}

// Pending reports the current frontier size.
func (en *Enumerator) Pending() int {
	return len(en.toVisit)
}

// leafPath walks to the leaf closest to the root and returns its depth
// plus the path to reach it, one bit per level (0 = left, 1 = right),
// with the bit for the root's choice in the low position. Ties
// between the two children's depths favor the right child.
func leafPath(e *expr.Expr[expr.Unit]) (depth uint8, path uint64) {
	if e.IsLeaf() {
		return 0, 0
	}
	left, right := e.Children()
	aDepth, aPath := leafPath(left)
	bDepth, bPath := leafPath(right)
	if aDepth < bDepth {
		return aDepth + 1, aPath << 1
	}
	return bDepth + 1, (bPath << 1) + 1
}

// permutations returns every shape reachable by replacing the leaf
// addressed by (depth, path) with a fresh binary node of each operator,
// leaving every other leaf in e untouched.
func permutations(e *expr.Expr[expr.Unit], depth uint8, path uint64) []*expr.Expr[expr.Unit] {
	if depth == 0 {
		if !e.IsLeaf() {
			return []*expr.Expr[expr.Unit]{e}
		}
		leaf := func() *expr.Expr[expr.Unit] { return expr.Leaf(expr.Unit{}) }
		return []*expr.Expr[expr.Unit]{
			expr.Bin(expr.Add, leaf(), leaf()),
			expr.Bin(expr.Xor, leaf(), leaf()),
			expr.Bin(expr.RotLeft, leaf(), leaf()),
			expr.Bin(expr.RotRight, leaf(), leaf()),
		}
	}
	if e.IsLeaf() {
		return []*expr.Expr[expr.Unit]{e}
	}
	left, right := e.Children()
	return binaryPermutations(left, right, depth, path, e.Op())
}

// binaryPermutations recurses into whichever child the next path bit
// points at, holding the other child fixed, and rebuilds op(a, b) over
// each result.
func binaryPermutations(a, b *expr.Expr[expr.Unit], depth uint8, path uint64, op expr.Op) []*expr.Expr[expr.Unit] {
	var perms []*expr.Expr[expr.Unit]
	if path&1 == 0 {
		for _, ap := range permutations(a, depth-1, path>>1) {
			perms = append(perms, expr.Bin(op, ap, b))
		}
	} else {
		for _, bp := range permutations(b, depth-1, path>>1) {
			perms = append(perms, expr.Bin(op, a, bp))
		}
	}
	return perms
}
