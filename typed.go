package memmgr

import "unsafe"

// New allocates storage for one T through m and runs T's zero-value
// construction semantics (Go's make-equivalent: the backing bytes are not
// guaranteed zeroed by the small-object path, so the pointer is explicitly
// cleared before use). This is the Go rendition of the source's templated
// MM_New<T>/MM_Delete<T> helpers
// (_examples/original_source/MemoryManager/MemoryManager.h), out of core
// scope per spec.md §4.6 and §1.
func New[T any](m *Manager) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	b, err := m.Allocate(size)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrExhausted
	}
	p := (*T)(unsafe.Pointer(&b[0]))
	*p = zero
	return p, nil
}

// Delete returns the storage obtained from New[T] to m.
func Delete[T any](m *Manager, p *T) {
	if p == nil {
		return
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	b := unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
	m.Deallocate(b, size)
}

// NewArray allocates storage for n contiguous Ts.
func NewArray[T any](m *Manager, n int) ([]T, error) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	size := elemSize * n
	b, err := m.Allocate(size)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrExhausted
	}
	s := unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
	for i := range s {
		s[i] = zero
	}
	return s, nil
}

// DeleteArray returns storage obtained from NewArray[T] to m.
func DeleteArray[T any](m *Manager, s []T) {
	if len(s) == 0 {
		return
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	size := elemSize * len(s)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), size)
	m.Deallocate(b, size)
}
