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

//go:build linux && amd64

package jit

import (
	"math/rand"
	"testing"

	"github.com/avalanche-labs/bytehash/bytecode"
	"github.com/avalanche-labs/bytehash/expr"
)

// TestCompileMatchesEval checks that for the same tree and the same
// (init, bytes), the compiled function agrees bit-for-bit with the
// reference evaluator and with the bytecode interpreter it was lowered
// from.
func TestCompileMatchesEval(t *testing.T) {
	r := rand.New(rand.NewSource(1234))

	for i := 0; i < 100; i++ {
		tree := expr.Rand(r)
		registers := 1 + r.Intn(8)
		prog := bytecode.Lower(tree, registers)

		guard, err := Compile(prog)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}

		bytes := make([]byte, 16)
		r.Read(bytes)
		init := r.Uint64()

		want := expr.HashBytes(tree, init, bytes)
		gotBC := prog.HashBytes(init, bytes)
		gotJIT := guard.HashBytes(init, bytes)

		if gotBC != want {
			guard.Close()
			t.Fatalf("bytecode disagrees with eval on %q: got %#x, want %#x", expr.String(tree), gotBC, want)
		}
		if gotJIT != want {
			guard.Close()
			t.Fatalf("jit disagrees with eval on %q (registers=%d): got %#x, want %#x",
				expr.String(tree), registers, gotJIT, want)
		}
		if err := guard.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}

func TestCompileScenario(t *testing.T) {
	// (state + 0) is the identity on state for any byte sequence.
	tree := expr.Bin(expr.Add, expr.Leaf(expr.HashState()), expr.Leaf(expr.ConstTag(0)))
	prog := bytecode.Lower(tree, 4)

	guard, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer guard.Close()

	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := guard.HashBytes(0xCAFEBABE, bytes); got != 0xCAFEBABE {
		t.Fatalf("HashBytes = %#x, want 0xCAFEBABE", got)
	}
}

func TestCompileRotateByLargeImmediate(t *testing.T) {
	// rotate amount 255 must mask to 255&63==63, not (255 mod 255)==0;
	// exercises the immediate rotate-count encoding at its byte boundary.
	tree := expr.Bin(expr.RotLeft, expr.Leaf(expr.HashState()), expr.Leaf(expr.ConstTag(255)))
	prog := bytecode.Lower(tree, 4)

	guard, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer guard.Close()

	want := expr.Eval(tree, 1, 0)
	if got := guard.Call(1, 0); got != want {
		t.Fatalf("Call = %#x, want %#x", got, want)
	}
}

func TestCompileSpillsToStack(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	// registers=0 makes every depth level a spill level; spill slots start
	// at FirstRegSlot, so levels past the fifth land on the stack.
	for i := 0; i < 20; i++ {
		tree := expr.Rand(r)
		prog := bytecode.Lower(tree, 0)

		guard, err := Compile(prog)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}

		bytes := make([]byte, 8)
		r.Read(bytes)
		init := r.Uint64()
		want := expr.HashBytes(tree, init, bytes)
		if got := guard.HashBytes(init, bytes); got != want {
			guard.Close()
			t.Fatalf("stack-only lowering disagrees with eval: got %#x, want %#x", got, want)
		}
		guard.Close()
	}
}
