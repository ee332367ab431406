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

// Package bytehash ties the search, lowering and execution packages
// together behind one contract (Hash) and scores how well a candidate
// hasher avalanches.
package bytehash

import (
	"math"
	"math/bits"
	"math/rand"
)

// Hash is the contract every carrier satisfies: expr.Hasher (closure
// composition), *bytecode.Program (the interpreter) and *jit.CodeGuard
// (compiled machine code) all implement HashBytes with this exact
// signature, so Score works unmodified against any of them.
type Hash interface {
	HashBytes(init uint64, data []byte) uint64
}

// Score estimates how well h avalanches: for clusters random byte
// strings, flip `mutations` random bits `clusterSize` times each and
// average the Hamming distance between the original and mutated
// hashes. A higher score means a single input bit flip moves more
// output bits, which is what makes a candidate a good hash function.
// exprLen is the candidate expression's leaf count (expr.Len), used to
// normalize the raw average against the entropy a hash of that size
// could plausibly produce.
func Score(h Hash, exprLen int, init uint64, clusters, clusterSize, bytesLen, mutations int, rng *rand.Rand) float64 {
	var score float64

	for i := 0; i < clusters; i++ {
		data := make([]byte, bytesLen)
		rng.Read(data)
		baseHash := h.HashBytes(init, data)

		for j := 0; j < clusterSize; j++ {
			mutated := append([]byte(nil), data...)
			for k := 0; k < mutations; k++ {
				byteIdx := rng.Intn(bytesLen)
				bit := rng.Intn(8)
				mutated[byteIdx] ^= 1 << bit
			}

			mutatedHash := h.HashBytes(init, mutated)
			diff := bits.OnesCount64(baseHash ^ mutatedHash)
			score += float64(diff) / float64(mutations)
		}
	}

	return score / float64(clusters) / float64(clusterSize) / math.Log2(float64(exprLen)+2)
}
