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

package main

import (
	"github.com/avalanche-labs/bytehash/bytecode"
	"github.com/avalanche-labs/bytehash/jit"
)

const jitAvailable = true

// verifyJIT compiles prog and checks it agrees with the interpreter on
// one probe input, returning a human-readable mismatch description (or
// "" if they agree).
func verifyJIT(prog *bytecode.Program) (string, error) {
	guard, err := jit.Compile(prog)
	if err != nil {
		return "", err
	}
	defer guard.Close()

	probe := []byte{0x01, 0x02, 0x03, 0x04}
	want := prog.HashBytes(0, probe)
	got := guard.HashBytes(0, probe)
	if got != want {
		return "jit output disagrees with interpreter", nil
	}
	return "", nil
}
