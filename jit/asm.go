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

// Package jit turns a bytecode.Program into native machine code and runs
// it from an executable page. The package is split the way the encoder
// and the ISA it targets are split conceptually: Assembler (this file) is
// the abstract contract bytecode.Program is emitted against; amd64.go is
// the only implementation, targeting System V x86-64. There is no
// portability goal beyond that one ISA.
package jit

// Assembler is the contract the bytecode emitter (asmProgram, in jit.go)
// is written against. Every *Mem form takes two slot references; every
// *Imm form takes one slot reference and a constant. Finalize seals the
// instruction stream and hands back something runnable.
type Assembler interface {
	MovMem(dst, src Memory)
	MovImm(dst Memory, src uint64)

	AddMem(dst, src Memory)
	AddImm(dst Memory, src uint32)

	XorMem(dst, src Memory)
	XorImm(dst Memory, src uint32)

	RotlMem(dst, src Memory)
	RotlImm(dst Memory, src uint32)

	RotrMem(dst, src Memory)
	RotrImm(dst Memory, src uint32)

	// Finalize appends the trailing return sequence and hands back a
	// guard over the finished executable page. The Assembler must not
	// be used again afterward.
	Finalize() (*CodeGuard, error)
}
