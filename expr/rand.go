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

import "math/rand"

// maxRandDepth is the depth at which random generation stops producing
// internal nodes and falls back to leaves only.
const maxRandDepth = 10

// Rand generates a random concrete expression. Below maxRandDepth, each
// node is chosen uniformly among 8 outcomes: Const, Const, Byte,
// HashState, Add, Xor, RotLeft, RotRight (Const is weighted 2x so
// non-trivial expressions stay common). At or beyond maxRandDepth, only
// the 4 leaf outcomes are considered. This specific bias governs the
// empirical expression-size distribution and must be preserved.
func Rand(rng *rand.Rand) *Expr[Tag] {
	return randWithDepth(rng, 0)
}

func randWithDepth(rng *rand.Rand, depth int) *Expr[Tag] {
	n := 8
	if depth >= maxRandDepth {
		n = 4
	}
	switch rng.Intn(n) {
	case 0, 1:
		return Leaf(ConstTag(rng.Uint64()))
	case 2:
		return Leaf(ByteTag())
	case 3:
		return Leaf(HashState())
	case 4:
		return Bin(Add, randWithDepth(rng, depth+1), randWithDepth(rng, depth+1))
	case 5:
		return Bin(Xor, randWithDepth(rng, depth+1), randWithDepth(rng, depth+1))
	case 6:
		return Bin(RotLeft, randWithDepth(rng, depth+1), randWithDepth(rng, depth+1))
	default:
		return Bin(RotRight, randWithDepth(rng, depth+1), randWithDepth(rng, depth+1))
	}
}
