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

import "testing"

func TestShapeKeyIdentical(t *testing.T) {
	a := Bin(Add, Leaf(Unit{}), Bin(Xor, Leaf(Unit{}), Leaf(Unit{})))
	b := Bin(Add, Leaf(Unit{}), Bin(Xor, Leaf(Unit{}), Leaf(Unit{})))
	if !Equal(a, b) {
		t.Fatalf("structurally identical shapes compared unequal: %q vs %q", ShapeKey(a), ShapeKey(b))
	}
}

func TestShapeKeyDistinguishesSiblingOrder(t *testing.T) {
	// Add is commutative at the hash-value level but the source performs
	// no canonicalization of operand order; "(x + y)" and "(y + x)"
	// shapes must compare as distinct.
	a := Bin(Add, Leaf(Unit{}), Bin(Xor, Leaf(Unit{}), Leaf(Unit{})))
	b := Bin(Add, Bin(Xor, Leaf(Unit{}), Leaf(Unit{})), Leaf(Unit{}))
	if Equal(a, b) {
		t.Fatalf("shapes differing only by sibling order compared equal")
	}
}

func TestShapeKeyDistinguishesOperator(t *testing.T) {
	a := Bin(Add, Leaf(Unit{}), Leaf(Unit{}))
	b := Bin(Xor, Leaf(Unit{}), Leaf(Unit{}))
	if Equal(a, b) {
		t.Fatalf("shapes with different operators compared equal")
	}
}
