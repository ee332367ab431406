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

package expr

import "math/bits"

// Hasher is the closure-composed carrier: a single callable built once
// from a concrete expression, holding references to each subtree's own
// callable. It exists as an alternative to the recursive tree-walking
// Eval for performance comparison, and as a second, independently-built
// evaluator that HashBytes results can be checked against.
//
// Subtree hashers are shared by reference because the same subtree
// hasher can be invoked many times while outputs are composed. Go's
// garbage collector already keeps every captured subtree closure
// alive for as long as the outer closure references it, so there is no
// equivalent of Rc to write here — a plain closure capturing its
// children's closures by value is the idiomatic replacement.
type Hasher struct {
	step func(state uint64, b byte) uint64
}

// Compile builds a Hasher from a concrete expression.
func Compile(e *Expr[Tag]) Hasher {
	if e.isLeaf {
		return compileLeaf(e.leaf)
	}

	left := Compile(e.left)
	right := Compile(e.right)

	switch e.op {
	case Add:
		return Hasher{step: func(state uint64, b byte) uint64 {
			return left.step(state, b) + right.step(state, b)
		}}
	case Xor:
		return Hasher{step: func(state uint64, b byte) uint64 {
			return left.step(state, b) ^ right.step(state, b)
		}}
	case RotLeft:
		return Hasher{step: func(state uint64, b byte) uint64 {
			return bits.RotateLeft64(left.step(state, b), int(right.step(state, b)&63))
		}}
	default: // RotRight
		return Hasher{step: func(state uint64, b byte) uint64 {
			return bits.RotateLeft64(left.step(state, b), -int(right.step(state, b)&63))
		}}
	}
}

func compileLeaf(tag Tag) Hasher {
	switch tag.Kind {
	case TagHashState:
		return Hasher{step: func(state uint64, _ byte) uint64 { return state }}
	case TagByte:
		return Hasher{step: func(_ uint64, b byte) uint64 { return uint64(b) }}
	default:
		c := tag.Const
		return Hasher{step: func(_ uint64, _ byte) uint64 { return c }}
	}
}

// HashBytes implements the shared hash-fold contract.
func (h Hasher) HashBytes(init uint64, data []byte) uint64 {
	hash := init
	for _, b := range data {
		hash = h.step(hash, b)
	}
	return hash
}
