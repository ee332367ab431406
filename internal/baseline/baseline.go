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

// Package baseline implements a fixed, architecture-agnostic reference
// hasher. Score needs something to compare generated candidates against
// that isn't itself drawn from the search space, the same role siphash
// plays as sneller's general-purpose non-cryptographic hash (see e.g.
// ion/zion/hash.go).
package baseline

import "github.com/dchest/siphash"

// Hash folds each input byte into the running state through siphash,
// keyed by K0/K1. It satisfies bytehash.Hash.
type Hash struct {
	K0, K1 uint64
}

// HashBytes implements the shared hash-fold contract.
func (h Hash) HashBytes(init uint64, data []byte) uint64 {
	state := init
	var buf [9]byte
	for _, b := range data {
		buf[0] = b
		for i := 0; i < 8; i++ {
			buf[1+i] = byte(state >> (8 * i))
		}
		state = siphash.Hash(h.K0, h.K1, buf[:])
	}
	return state
}
