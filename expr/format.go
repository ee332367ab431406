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

import "fmt"

// stringer is satisfied by both Tag and Unit, letting String work for
// both concrete expressions and bare shapes.
type stringer interface {
	String() string
}

// String renders e as parenthesized infix, e.g. "(state xor (byte << 8))".
func String[T stringer](e *Expr[T]) string {
	if e.isLeaf {
		return e.leaf.String()
	}
	left, right := e.left, e.right
	return fmt.Sprintf("(%s %s %s)", String(left), e.op, String(right))
}
