// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.
// Further modifications for the segregated/big-object allocator split.

package memmgr

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// handles tracks the file-mapping handle backing each region returned by
// acquireRegion so releaseRegion can unwind both the view and the mapping.
var handles = map[uintptr]windows.Handle{}

// acquireRegion reserves size bytes of zeroed memory via CreateFileMapping
// and MapViewOfFile, mirroring the two-step mmap emulation Windows requires.
func acquireRegion(size int) ([]byte, error) {
	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, fmt.Errorf("%w: %v", ErrOOM, err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if addr == 0 {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("%w: %v", ErrOOM, err)
	}

	handles[addr] = h

	var b []byte
	hdr := (*sliceHeader)(unsafe.Pointer(&b))
	hdr.Data = addr
	hdr.Len = size
	hdr.Cap = size
	return b, nil
}

// releaseRegion unmaps a region and closes its backing file-mapping handle.
func releaseRegion(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	if err := windows.UnmapViewOfFile(addr); err != nil {
		return err
	}

	h, ok := handles[addr]
	if !ok {
		return errors.New("memmgr: unknown region base address")
	}
	delete(handles, addr)
	return windows.CloseHandle(h)
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}
