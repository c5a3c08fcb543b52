package memmgr

import "errors"

// ErrExhausted is returned when an allocator has no free block large enough
// to satisfy a request and growth failed or was not attempted.
var ErrExhausted = errors.New("memmgr: allocator exhausted")

// ErrOOM is returned when the OS refused to hand back more memory.
var ErrOOM = errors.New("memmgr: out of memory")

// ErrNotOwned is returned when no pool of the allocator claims a pointer,
// i.e. it was not handed out by this allocator's pools.
var ErrNotOwned = errors.New("memmgr: pointer not owned by this allocator")
