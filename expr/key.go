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

import (
	"strconv"
	"strings"
)

// ShapeKey renders a canonical structural key for a shape, used by the
// BFS enumerator's visited set and by tests that need Expr[Unit]
// equality. Generic sum types have no derivable structural hash or
// equality in Go, so shapes are canonicalized to a string instead; two
// shapes produce the same key iff they are structurally identical,
// including sibling order. No canonicalization of commutative operators
// (Add, Xor) is performed — "(a + b)" and "(b + a)" are different keys —
// which the enumerator's leaf-addressed expansion policy depends on.
func ShapeKey(e *Expr[Unit]) string {
	var b strings.Builder
	writeShapeKey(&b, e)
	return b.String()
}

func writeShapeKey(b *strings.Builder, e *Expr[Unit]) {
	if e.isLeaf {
		b.WriteByte('.')
		return
	}
	b.WriteByte('(')
	b.WriteString(strconv.Itoa(int(e.op)))
	writeShapeKey(b, e.left)
	writeShapeKey(b, e.right)
	b.WriteByte(')')
}

// Equal reports whether two shapes are structurally identical.
func Equal(a, b *Expr[Unit]) bool {
	return ShapeKey(a) == ShapeKey(b)
}
