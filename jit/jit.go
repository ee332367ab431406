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
	"unsafe"

	"github.com/avalanche-labs/bytehash/bytecode"
)

// Compile lowers prog onto an executable page and returns a guard over
// it. The guard must be Closed once it is no longer needed; Compile
// itself never fails except on page allocation.
func Compile(prog *bytecode.Program) (*CodeGuard, error) {
	asm, err := newAMD64Assembler()
	if err != nil {
		return nil, err
	}
	asmProgram(asm, prog)
	return asm.Finalize()
}

// asmProgram translates each bytecode.Instruction and the program's
// result value into Assembler calls. Move with an Immediate source and
// MoveAbs both become MovImm; every other opcode has one Mem and one Imm
// form depending on the instruction's Value kind.
func asmProgram(asm Assembler, prog *bytecode.Program) {
	for _, instr := range prog.Instructions {
		dst := MemoryFromSlot(instr.Dst)
		switch instr.Op {
		case bytecode.OpMove, bytecode.OpMoveAbs:
			if instr.Src.Kind == bytecode.Immediate {
				asm.MovImm(dst, instr.Src.Imm)
			} else {
				asm.MovMem(dst, MemoryFromSlot(instr.Src.Ref))
			}
		case bytecode.OpAdd:
			if instr.Src.Kind == bytecode.Immediate {
				asm.AddImm(dst, uint32(instr.Src.Imm))
			} else {
				asm.AddMem(dst, MemoryFromSlot(instr.Src.Ref))
			}
		case bytecode.OpXor:
			if instr.Src.Kind == bytecode.Immediate {
				asm.XorImm(dst, uint32(instr.Src.Imm))
			} else {
				asm.XorMem(dst, MemoryFromSlot(instr.Src.Ref))
			}
		case bytecode.OpRotLeft:
			if instr.Src.Kind == bytecode.Immediate {
				asm.RotlImm(dst, uint32(instr.Src.Imm))
			} else {
				asm.RotlMem(dst, MemoryFromSlot(instr.Src.Ref))
			}
		case bytecode.OpRotRight:
			if instr.Src.Kind == bytecode.Immediate {
				asm.RotrImm(dst, uint32(instr.Src.Imm))
			} else {
				asm.RotrMem(dst, MemoryFromSlot(instr.Src.Ref))
			}
		}
	}

	// prog.Result is always Ref(SlotResult) or an Immediate after
	// bytecode.Lower's fixup, so the entry point's return value already
	// sits in RAX (slot 2) by the time this loop above finishes; an
	// Immediate result needs one more load into RAX.
	if prog.Result.Kind == bytecode.Immediate {
		asm.MovImm(Reg(RAX), prog.Result.Imm)
	}
}

// CodeGuard owns one executable mapping produced by Compile. Close
// releases the mapping; calling the guard's Call or HashBytes methods
// after Close is undefined.
type CodeGuard struct {
	ptr     uintptr
	length  int
	release func() error
	closed  bool
}

func newCodeGuard(buf *codeBuf) (*CodeGuard, error) {
	return &CodeGuard{
		ptr:     uintptr(unsafe.Pointer(&buf.mem[0])),
		length:  buf.used,
		release: buf.release,
	}, nil
}

// Call invokes the compiled function once.
func (g *CodeGuard) Call(state, b uint64) uint64 {
	return callJIT(g.ptr, state, b)
}

// HashBytes implements the shared hash-fold contract against the
// compiled function, mirroring bytecode.Program.HashBytes and
// expr.HashBytes.
func (g *CodeGuard) HashBytes(init uint64, data []byte) uint64 {
	hash := init
	for _, b := range data {
		hash = g.Call(hash, uint64(b))
	}
	return hash
}

// Bytes returns the raw machine code, for disassembly (see
// internal/diag).
func (g *CodeGuard) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(g.ptr)), g.length)
}

// Close unmaps the executable page. Safe to call more than once.
func (g *CodeGuard) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	return g.release()
}
