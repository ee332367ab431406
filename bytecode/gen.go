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
	"github.com/avalanche-labs/bytehash/expr"

	"golang.org/x/exp/slices"
)

// smallImmMax is the largest constant that fits the JIT's 32-bit
// immediate forms (which the CPU sign-extends to 64 bits); anything above
// this is emitted as MoveAbs with a full 64-bit immediate instead of
// folded into an Immediate Value.
const smallImmMax = 1<<31 - 1

// Lower converts a concrete expression into a Program using registers
// "register slots" (bytecode slots FirstRegSlot..FirstRegSlot+registers)
// and the remainder as spill slots. Lowering is total on well-formed
// trees: there are no fallible operations in this path.
//
// Algorithm:
//  1. measure the count of internal nodes at each depth level;
//  2. pick the `registers` hottest depths to live in register slots;
//  3. assign every depth a slot, register levels first;
//  4. emit recursively, left child first then right child then the op;
//  5. fix up the result to Reference(SlotResult) if it isn't already.
func Lower(e *expr.Expr[expr.Tag], registers int) *Program {
	slotOf := registerAllocate(e, registers)

	instructions, result := emit(e, slotOf)

	if result.Kind == Reference && result.Ref == SlotResult {
		return &Program{Instructions: instructions, Result: result}
	}

	instructions = append(instructions, Instruction{Op: OpMove, Dst: SlotResult, Src: result})
	return &Program{Instructions: instructions, Result: Ref(SlotResult)}
}

type levelCount struct {
	level int
	count int
}

// registerAllocate assigns each depth level of e a bytecode slot. The
// returned slice has length expr.Depth(e) (the source's deliberately
// pessimistic depth metric — see expr.Depth), or 1 for a bare leaf so a
// large constant at the root still has a slot, and is indexed by depth
// level, shrinking by one element per recursive step during emission
// (see emit).
func registerAllocate(e *expr.Expr[expr.Tag], registers int) []int {
	depth := expr.Depth(e)
	if depth < 1 {
		depth = 1
	}
	levels := make([]int, depth)
	measureLevels(e, levels)

	tagged := make([]levelCount, len(levels))
	for i, c := range levels {
		tagged[i] = levelCount{level: i, count: c}
	}
	// Sort descending by node count so the `registers` hottest depths
	// come first; ties keep their original (shallowest-first) order,
	// matching the stable ascending-then-take-from-the-tail selection
	// in the source.
	slices.SortStableFunc(tagged, func(a, b levelCount) bool {
		return a.count > b.count
	})

	isRegisterLevel := make([]bool, len(levels))
	for i := 0; i < registers && i < len(tagged); i++ {
		isRegisterLevel[tagged[i].level] = true
	}

	slotOf := make([]int, len(levels))
	regSlot := FirstRegSlot
	spillSlot := FirstRegSlot + registers
	for level := range slotOf {
		if isRegisterLevel[level] {
			slotOf[level] = regSlot
			regSlot++
		} else {
			slotOf[level] = spillSlot
			spillSlot++
		}
	}
	return slotOf
}

// measureLevels increments levels[0] for every internal node found at
// the current recursion depth, then recurses into both children with
// levels shifted by one — so levels[0] always refers to "this depth"
// relative to the current call.
func measureLevels(e *expr.Expr[expr.Tag], levels []int) {
	if e.IsLeaf() {
		return
	}
	levels[0]++
	left, right := e.Children()
	measureLevels(left, levels[1:])
	measureLevels(right, levels[1:])
}

// emit recursively lowers e, consuming the front of slotOf as "this
// node's slot" and passing the remainder down to children (mirroring
// measureLevels' shrinking-slice recursion).
func emit(e *expr.Expr[expr.Tag], slotOf []int) ([]Instruction, Value) {
	if e.IsLeaf() {
		tag := e.Leaf()
		switch tag.Kind {
		case expr.TagHashState:
			return nil, Ref(SlotHashState)
		case expr.TagByte:
			return nil, Ref(SlotByte)
		default:
			if tag.Const <= smallImmMax {
				return nil, Imm(tag.Const)
			}
			slot := slotOf[0]
			return []Instruction{{Op: OpMoveAbs, Dst: slot, Src: Imm(tag.Const)}}, Ref(slot)
		}
	}

	slot := slotOf[0]
	op := binOp(e.Op())

	left, right := e.Children()
	leftInstrs, leftRes := emit(left, slotOf[1:])
	rightInstrs, rightRes := emit(right, slotOf[1:])

	instrs := make([]Instruction, 0, len(leftInstrs)+len(rightInstrs)+2)
	instrs = append(instrs, leftInstrs...)
	instrs = append(instrs, Instruction{Op: OpMove, Dst: slot, Src: leftRes})
	instrs = append(instrs, rightInstrs...)
	instrs = append(instrs, Instruction{Op: op, Dst: slot, Src: rightRes})

	return instrs, Ref(slot)
}

func binOp(op expr.Op) Opcode {
	switch op {
	case expr.Add:
		return OpAdd
	case expr.Xor:
		return OpXor
	case expr.RotLeft:
		return OpRotLeft
	default:
		return OpRotRight
	}
}
