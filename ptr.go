package memmgr

import "unsafe"

// bytePointerDiff returns the signed distance, in bytes, from base to p.
// Both must point into the same backing array (or be unrelated, in which
// case the result is meaningless and the caller is expected to range-check
// it against a known region length). This is the same
// uintptr(unsafe.Pointer(...)) arithmetic the teacher uses throughout
// memory.go to locate a page header from an interior pointer.
func bytePointerDiff(base, p *byte) int {
	return int(uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(base)))
}
