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
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var pageSize = os.Getpagesize()

// codeBuf is a growable buffer backed by an anonymous RWX mapping. It
// tracks the first allocation failure instead of panicking or returning
// an error from every push, matching how Program assembly never checks
// errors mid-stream (see AddImm, RotlMem, etc.); callers check codeBuf.err
// once, at Finalize.
type codeBuf struct {
	mem  []byte
	used int
	err  error
}

func allocExec(size int) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("jit: mmap executable page: %w", err)
	}
	return mem, nil
}

func newCodeBuf(size int) (*codeBuf, error) {
	mem, err := allocExec(size)
	if err != nil {
		return nil, err
	}
	return &codeBuf{mem: mem}, nil
}

func (c *codeBuf) push(b byte) {
	if c.err != nil {
		return
	}
	if c.used == len(c.mem) {
		grown, err := allocExec(len(c.mem) * 2)
		if err != nil {
			c.err = err
			return
		}
		copy(grown, c.mem[:c.used])
		if err := unix.Munmap(c.mem); err != nil {
			c.err = fmt.Errorf("jit: unmap old code page: %w", err)
			return
		}
		c.mem = grown
	}
	c.mem[c.used] = b
	c.used++
}

// release unmaps the backing page. Safe to call at most once.
func (c *codeBuf) release() error {
	return unix.Munmap(c.mem)
}
