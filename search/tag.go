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

	"github.com/avalanche-labs/bytehash/expr"
)

// Tagger turns shapes into concrete expressions by assigning every leaf
// a uniformly random Tag, weighted 2x toward a random 64-bit constant
// relative to Byte and HashState.
type Tagger struct {
	rng *rand.Rand
}

// NewTagger builds a Tagger drawing from rng.
func NewTagger(rng *rand.Rand) *Tagger {
	return &Tagger{rng: rng}
}

// Annotate replaces every Unit leaf in e with a random Tag, preserving
// the shape's operator structure exactly.
func (t *Tagger) Annotate(e *expr.Expr[expr.Unit]) *expr.Expr[expr.Tag] {
	if e.IsLeaf() {
		return expr.Leaf(t.randTag())
	}
	left, right := e.Children()
	return expr.Bin(e.Op(), t.Annotate(left), t.Annotate(right))
}

func (t *Tagger) randTag() expr.Tag {
	switch t.rng.Intn(4) {
	case 0:
		return expr.ByteTag()
	case 1:
		return expr.HashState()
	default:
		return expr.ConstTag(t.rng.Uint64())
	}
}
