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

// Register names a general-purpose 64-bit register used by the encoder.
// RDI and RSI hold the System V integer argument registers (state and
// byte, respectively); RAX is the memory-memory staging register and the
// return register; RCX is clobbered by every rotate whose count comes
// from a slot rather than an immediate.
type Register uint8

const (
	RAX Register = iota
	RCX
	RDX
	RSI
	RDI
	R8
	R9
	R10
	R11
)

// emit returns the ModRM/REX register field encoding for r.
func (r Register) emit() uint8 {
	switch r {
	case RAX:
		return 0
	case RCX:
		return 1
	case RDX:
		return 2
	case RSI:
		return 6
	case RDI:
		return 7
	case R8:
		return 8
	case R9:
		return 9
	case R10:
		return 10
	case R11:
		return 11
	default:
		return 0
	}
}

// Memory is a bytecode slot's physical home: either one of the nine
// registers above, or a slot below the stack pointer (no frame is set
// up for it). Stack is addressed relative to RSP by slot index, not byte
// offset; stackDisp below converts one to the other.
type Memory struct {
	reg     Register
	stack   bool
	stackAt int
}

// Reg builds a register-resident Memory.
func Reg(r Register) Memory { return Memory{reg: r} }

// Stack builds a stack-resident Memory at the given slot index.
func Stack(idx int) Memory { return Memory{stack: true, stackAt: idx} }

func (m Memory) isStack() bool { return m.stack }

// MemoryFromSlot maps a bytecode.Memory slot onto its physical location,
// mirroring bytecode's reserved-slot layout: slots 0-8 live in registers
// (state, byte, result/scratch, rotate-count, then five more GPRs),
// everything from slot 9 up spills to the stack.
func MemoryFromSlot(slot int) Memory {
	switch slot {
	case 0:
		return Reg(RDI)
	case 1:
		return Reg(RSI)
	case 2:
		return Reg(RAX)
	case 3:
		return Reg(RCX)
	case 4:
		return Reg(RDX)
	case 5:
		return Reg(R8)
	case 6:
		return Reg(R9)
	case 7:
		return Reg(R10)
	case 8:
		return Reg(R11)
	default:
		return Stack(slot - 8)
	}
}

// stackDisp returns the one-byte RSP-relative displacement for stack
// slot idx, growing downward in 8-byte steps.
func stackDisp(idx int) byte {
	return byte(int8(-8 * idx))
}

// amd64Assembler is the Assembler implementation for System V x86-64. It
// writes directly into a growable executable page (codeBuf) rather than
// building an intermediate instruction list.
type amd64Assembler struct {
	buf *codeBuf
}

// newAMD64Assembler allocates a fresh executable page and writes the
// endbr64 prologue every generated function starts with.
func newAMD64Assembler() (*amd64Assembler, error) {
	buf, err := newCodeBuf(pageSize)
	if err != nil {
		return nil, err
	}
	buf.push(0xf3)
	buf.push(0x0f)
	buf.push(0x1e)
	buf.push(0xfa)
	return &amd64Assembler{buf: buf}, nil
}

func (a *amd64Assembler) MovMem(dst, src Memory) {
	switch {
	case !dst.isStack() && !src.isStack():
		a.buf.push(0x48 + (dst.reg.emit() >> 3) + ((src.reg.emit() >> 3) << 2))
		a.buf.push(0x89)
		a.buf.push(0b11_000_000 + ((src.reg.emit() % 8) << 3) + (dst.reg.emit() % 8))
	case !dst.isStack() && src.isStack():
		a.buf.push(0x48 + ((dst.reg.emit() >> 3) << 2))
		a.buf.push(0x8b)
		a.buf.push(0b01_000_100 + ((dst.reg.emit() % 8) << 3))
		a.buf.push(0x24)
		a.buf.push(stackDisp(src.stackAt))
	case dst.isStack() && !src.isStack():
		a.buf.push(0x48 + ((src.reg.emit() >> 3) << 2))
		a.buf.push(0x89)
		a.buf.push(0b01_000_100 + ((src.reg.emit() % 8) << 3))
		a.buf.push(0x24)
		a.buf.push(stackDisp(dst.stackAt))
	default:
		a.MovMem(Reg(RAX), src)
		a.MovMem(dst, Reg(RAX))
	}
}

func (a *amd64Assembler) MovImm(dst Memory, src uint64) {
	if dst.isStack() {
		a.MovImm(Reg(RAX), src)
		a.MovMem(dst, Reg(RAX))
		return
	}
	a.buf.push(0x48 + (dst.reg.emit() >> 3))
	a.buf.push(0b10_111_000 + (dst.reg.emit() % 8))
	for i := 0; i < 8; i++ {
		a.buf.push(byte(src >> (8 * i)))
	}
}

func (a *amd64Assembler) AddMem(dst, src Memory) {
	switch {
	case !dst.isStack() && !src.isStack():
		a.buf.push(0x48 + (dst.reg.emit() >> 3) + ((src.reg.emit() >> 3) << 2))
		a.buf.push(0x01)
		a.buf.push(0b11_000_000 + ((src.reg.emit() % 8) << 3) + (dst.reg.emit() % 8))
	case dst.isStack() && !src.isStack():
		a.buf.push(0x48 + ((src.reg.emit() >> 3) << 2))
		a.buf.push(0x01)
		a.buf.push(0b01_000_100 + ((src.reg.emit() % 8) << 3))
		a.buf.push(0x24)
		a.buf.push(stackDisp(dst.stackAt))
	case !dst.isStack() && src.isStack():
		a.buf.push(0x48 + ((dst.reg.emit() >> 3) << 2))
		a.buf.push(0x03)
		a.buf.push(0b01_000_100 + ((dst.reg.emit() % 8) << 3))
		a.buf.push(0x24)
		a.buf.push(stackDisp(src.stackAt))
	default:
		a.MovMem(Reg(RAX), dst)
		a.AddMem(Reg(RAX), src)
		a.MovMem(dst, Reg(RAX))
	}
}

func (a *amd64Assembler) AddImm(dst Memory, src uint32) {
	if dst.isStack() {
		a.buf.push(0x48)
		a.buf.push(0x81)
		a.buf.push(0x44)
		a.buf.push(0x24)
		a.buf.push(stackDisp(dst.stackAt))
		a.push32(src)
		return
	}
	a.buf.push(0x48 + (dst.reg.emit() >> 3))
	a.buf.push(0x81)
	a.buf.push(0b11_000_000 + (dst.reg.emit() % 8))
	a.push32(src)
}

func (a *amd64Assembler) XorMem(dst, src Memory) {
	switch {
	case !dst.isStack() && !src.isStack():
		a.buf.push(0x48 + (dst.reg.emit() >> 3) + ((src.reg.emit() >> 3) << 2))
		a.buf.push(0x31)
		a.buf.push(0b11_000_000 + ((src.reg.emit() % 8) << 3) + (dst.reg.emit() % 8))
	case dst.isStack() && !src.isStack():
		a.buf.push(0x48 + ((src.reg.emit() >> 3) << 2))
		a.buf.push(0x31)
		a.buf.push(0b01_000_100 + ((src.reg.emit() % 8) << 3))
		a.buf.push(0x24)
		a.buf.push(stackDisp(dst.stackAt))
	case !dst.isStack() && src.isStack():
		a.buf.push(0x48 + ((dst.reg.emit() >> 3) << 2))
		a.buf.push(0x33)
		a.buf.push(0b01_000_100 + ((dst.reg.emit() % 8) << 3))
		a.buf.push(0x24)
		a.buf.push(stackDisp(src.stackAt))
	default:
		a.MovMem(Reg(RAX), dst)
		a.XorMem(Reg(RAX), src)
		a.MovMem(dst, Reg(RAX))
	}
}

func (a *amd64Assembler) XorImm(dst Memory, src uint32) {
	if dst.isStack() {
		a.buf.push(0x48)
		a.buf.push(0x81)
		a.buf.push(0x74)
		a.buf.push(0x24)
		a.buf.push(stackDisp(dst.stackAt))
		a.push32(src)
		return
	}
	a.buf.push(0x48 + (dst.reg.emit() >> 3))
	a.buf.push(0x81)
	a.buf.push(0b11_110_000 + (dst.reg.emit() % 8))
	a.push32(src)
}

// RotlMem and RotrMem always shift by CL; if src isn't already RCX, the
// count is staged there first (clobbering whatever RCX held).
func (a *amd64Assembler) RotlMem(dst, src Memory) {
	if !dst.isStack() {
		if !(src.reg == RCX && !src.isStack()) {
			a.MovMem(Reg(RCX), src)
		}
		a.buf.push(0x48 + (dst.reg.emit() >> 3))
		a.buf.push(0xd3)
		a.buf.push(0b11_000_000 + (dst.reg.emit() % 8))
		return
	}
	a.MovMem(Reg(RAX), dst)
	a.RotlMem(Reg(RAX), src)
	a.MovMem(dst, Reg(RAX))
}

func (a *amd64Assembler) RotlImm(dst Memory, src uint32) {
	if dst.isStack() {
		a.MovMem(Reg(RAX), dst)
		a.RotlImm(Reg(RAX), src)
		a.MovMem(dst, Reg(RAX))
		return
	}
	a.buf.push(0x48 + (dst.reg.emit() >> 3))
	a.buf.push(0xc1)
	a.buf.push(0b11_000_000 + (dst.reg.emit() % 8))
	a.buf.push(byte(src % 256))
}

func (a *amd64Assembler) RotrMem(dst, src Memory) {
	if !dst.isStack() {
		if !(src.reg == RCX && !src.isStack()) {
			a.MovMem(Reg(RCX), src)
		}
		a.buf.push(0x48 + (dst.reg.emit() >> 3))
		a.buf.push(0xd3)
		a.buf.push(0b11_001_000 + (dst.reg.emit() % 8))
		return
	}
	a.MovMem(Reg(RAX), dst)
	a.RotrMem(Reg(RAX), src)
	a.MovMem(dst, Reg(RAX))
}

func (a *amd64Assembler) RotrImm(dst Memory, src uint32) {
	if dst.isStack() {
		a.MovMem(Reg(RAX), dst)
		a.RotrImm(Reg(RAX), src)
		a.MovMem(dst, Reg(RAX))
		return
	}
	a.buf.push(0x48 + (dst.reg.emit() >> 3))
	a.buf.push(0xc1)
	a.buf.push(0b11_001_000 + (dst.reg.emit() % 8))
	a.buf.push(byte(src % 256))
}

func (a *amd64Assembler) push32(v uint32) {
	for i := 0; i < 4; i++ {
		a.buf.push(byte(v >> (8 * i)))
	}
}

// Finalize appends the function epilogue (a bare ret) and seals the
// page. The Assembler must not be used again afterward.
func (a *amd64Assembler) Finalize() (*CodeGuard, error) {
	a.buf.push(0xc3)
	if err := a.buf.err; err != nil {
		return nil, err
	}
	return newCodeGuard(a.buf)
}
