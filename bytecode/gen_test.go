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

package bytecode

import (
	"math/rand"
	"testing"

	"github.com/avalanche-labs/bytehash/expr"
)

func TestLowerMatchesEval(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		tree := expr.Rand(r)
		for registers := 1; registers <= 8; registers++ {
			prog := Lower(tree, registers)

			bytes := make([]byte, 10)
			r.Read(bytes)
			init := r.Uint64()

			want := expr.HashBytes(tree, init, bytes)
			got := prog.HashBytes(init, bytes)
			if got != want {
				t.Fatalf("registers=%d: Lower disagrees with Eval on %q: got %#x, want %#x",
					registers, expr.String(tree), got, want)
			}
		}
	}
}

func TestLowerNeverWritesReservedInputSlots(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		tree := expr.Rand(r)
		prog := Lower(tree, 6)
		for _, instr := range prog.Instructions {
			if instr.Dst < SlotResult {
				t.Fatalf("instruction writes reserved slot %d: %v", instr.Dst, instr)
			}
		}
	}
}

func TestLowerResultIsRefResultOrImmediate(t *testing.T) {
	r := rand.New(rand.NewSource(99))

	for i := 0; i < 200; i++ {
		tree := expr.Rand(r)
		prog := Lower(tree, 6)
		if prog.Result.Kind == Immediate {
			continue
		}
		if prog.Result.Ref != SlotResult {
			t.Fatalf("result slot = %d, want %d or an immediate", prog.Result.Ref, SlotResult)
		}
	}
}

func TestLowerScenario(t *testing.T) {
	// (state + 0) is the identity on state for any byte sequence.
	tree := expr.Bin(expr.Add, expr.Leaf(expr.HashState()), expr.Leaf(expr.ConstTag(0)))
	prog := Lower(tree, 4)
	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := prog.HashBytes(0xCAFEBABE, bytes); got != 0xCAFEBABE {
		t.Fatalf("HashBytes = %#x, want 0xCAFEBABE", got)
	}
}
