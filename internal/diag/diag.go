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

// Package diag holds driver-facing diagnostics for compiled JIT buffers:
// disassembly via the external objdump binary, and a content fingerprint
// for telling two compiled programs apart without diffing raw bytes.
package diag

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/crypto/blake2b"
)

// Disassemble shells out to objdump to render code as flat x86-64
// binary. It is fatal-on-missing-tool by nature (objdump not found
// surfaces as an error, not a panic) and is meant for interactive
// inspection, not the hot path.
func Disassemble(code []byte) (string, error) {
	f, err := os.CreateTemp("", "bytehash-jit-*.bin")
	if err != nil {
		return "", fmt.Errorf("diag: create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if _, err := f.Write(code); err != nil {
		return "", fmt.Errorf("diag: write temp file: %w", err)
	}

	cmd := exec.Command("objdump", "-D", "-b", "binary", "-mi386:x86-64", "-M", "intel", f.Name())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("diag: objdump: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// Fingerprint returns a content hash of a compiled program's machine
// code, so the driver can report "two candidates produced identical
// code" without comparing raw byte slices.
func Fingerprint(code []byte) [blake2b.Size256]byte {
	return blake2b.Sum256(code)
}
