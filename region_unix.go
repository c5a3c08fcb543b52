// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.
// Further modifications for the segregated/big-object allocator split.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

package memmgr

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// acquireRegion reserves size bytes of zeroed, page-aligned memory directly
// from the OS via an anonymous mmap. It is the sole acquisition path for
// both Chunk backing storage and the big-object region.
func acquireRegion(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOOM, err)
	}
	return b, nil
}

// releaseRegion returns a region acquired via acquireRegion back to the OS.
func releaseRegion(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
