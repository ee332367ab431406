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

// Eval is the ground-truth reference evaluator for a concrete expression:
// it recursively folds state and byte through the tree per-node, using
// wrapping 64-bit addition and platform rotate semantics (amount mod 64).
// Every other hash carrier (bytecode interpreter, JIT) must agree with
// this function bit-for-bit.
func Eval(e *Expr[Tag], state uint64, b byte) uint64 {
	if e.isLeaf {
		switch e.leaf.Kind {
		case TagHashState:
			return state
		case TagByte:
			return uint64(b)
		default:
			return e.leaf.Const
		}
	}

	left, right := e.left, e.right
	switch e.op {
	case Add:
		return Eval(left, state, b) + Eval(right, state, b)
	case Xor:
		return Eval(left, state, b) ^ Eval(right, state, b)
	case RotLeft:
		return bits.RotateLeft64(Eval(left, state, b), int(Eval(right, state, b)&63))
	case RotRight:
		return bits.RotateLeft64(Eval(left, state, b), -int(Eval(right, state, b)&63))
	default:
		panic("expr: unknown op")
	}
}

// HashBytes folds init through bytes one at a time via Eval, implementing
// the shared hash-fold contract every carrier must satisfy.
func HashBytes(e *Expr[Tag], init uint64, data []byte) uint64 {
	hash := init
	for _, b := range data {
		hash = Eval(e, hash, b)
	}
	return hash
}
