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
	"math/rand"
	"testing"

	"github.com/avalanche-labs/bytehash/expr"
)

func TestAnnotatePreservesShape(t *testing.T) {
	en := NewEnumerator()
	tagger := NewTagger(rand.New(rand.NewSource(1)))

	for i := 0; i < 50; i++ {
		shape, _ := en.Next()
		tagged := tagger.Annotate(shape)
		if expr.Len(shape) != expr.Len(tagged) {
			t.Fatalf("Annotate changed size: shape has %d leaves, tagged has %d", expr.Len(shape), expr.Len(tagged))
		}
	}
}

func TestAnnotateLeavesAreAllConcrete(t *testing.T) {
	tagger := NewTagger(rand.New(rand.NewSource(2)))
	en := NewEnumerator()

	var walk func(*expr.Expr[expr.Tag])
	walk = func(e *expr.Expr[expr.Tag]) {
		if e.IsLeaf() {
			_ = e.Leaf().Kind // must not panic: leaf always carries a concrete Tag
			return
		}
		left, right := e.Children()
		walk(left)
		walk(right)
	}

	for i := 0; i < 30; i++ {
		shape, _ := en.Next()
		walk(tagger.Annotate(shape))
	}
}

func TestAnnotateIsWeightedTowardConst(t *testing.T) {
	tagger := NewTagger(rand.New(rand.NewSource(3)))
	leaf := expr.Leaf(expr.Unit{})

	counts := map[expr.TagKind]int{}
	for i := 0; i < 4000; i++ {
		tag := tagger.Annotate(leaf).Leaf()
		counts[tag.Kind]++
	}

	if counts[expr.TagConst] <= counts[expr.TagByte] || counts[expr.TagConst] <= counts[expr.TagHashState] {
		t.Fatalf("Const should be drawn roughly twice as often as Byte or HashState, got counts=%v", counts)
	}
}
