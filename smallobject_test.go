package memmgr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSmallObjectAllocator(t *testing.T) *SmallObjectAllocator {
	t.Helper()
	s, err := NewSmallObjectAllocator(256, 64, 8, 2, 255)
	require.NoError(t, err)
	return s
}

// TestSmallObjectAllocatorSA1 is spec.md §8's SA-1 scenario: config
// pageSize=256, maxObjectSize=64, alignment=8; allocate 8, 16, then 8
// bytes and check pool ownership.
func TestSmallObjectAllocatorSA1(t *testing.T) {
	s := newTestSmallObjectAllocator(t)

	a, err := s.Allocate(8, false)
	require.NoError(t, err)
	require.NotNil(t, a)

	b, err := s.Allocate(16, false)
	require.NoError(t, err)
	require.NotNil(t, b)

	c, err := s.Allocate(8, false)
	require.NoError(t, err)
	require.NotNil(t, c)

	require.NotNil(t, s.pools[0].hasBlock(a))
	require.NotNil(t, s.pools[0].hasBlock(c))
	require.NotNil(t, s.pools[1].hasBlock(b))
	require.Nil(t, s.pools[1].hasBlock(a))
}

// TestSmallObjectAllocatorSA2 is spec.md §8's SA-2 scenario: repeatedly
// allocate and free a single 1-byte request and check the empty-chunk
// hysteresis holds at every step.
func TestSmallObjectAllocatorSA2(t *testing.T) {
	s := newTestSmallObjectAllocator(t)

	for i := 0; i < 1024; i++ {
		b, err := s.Allocate(1, false)
		require.NoError(t, err)
		require.NotNil(t, b)

		st := s.Stats()
		require.LessOrEqual(t, st.EmptyChunks, 1)

		s.Deallocate(b, 1)
	}
}

// TestSmallObjectAllocatorSA3: n=0 behaves like n=1.
func TestSmallObjectAllocatorSA3(t *testing.T) {
	s := newTestSmallObjectAllocator(t)

	b, err := s.Allocate(0, false)
	require.NoError(t, err)
	require.NotNil(t, b)
	require.NotNil(t, s.pools[0].hasBlock(b))
}

// TestSmallObjectAllocatorSA4: oversize requests bypass the pools entirely.
func TestSmallObjectAllocatorSA4(t *testing.T) {
	s := newTestSmallObjectAllocator(t)

	b, err := s.Allocate(65, false)
	require.NoError(t, err)
	require.Len(t, b, 65)

	for _, pool := range s.pools {
		require.Nil(t, pool.hasBlock(b))
	}
}

func TestSmallObjectAllocatorDeallocateUnsized(t *testing.T) {
	s := newTestSmallObjectAllocator(t)

	b, err := s.Allocate(16, false)
	require.NoError(t, err)

	require.NoError(t, s.DeallocateUnsized(b))
	require.False(t, s.IsCorrupt())

	require.ErrorIs(t, s.DeallocateUnsized(make([]byte, 16)), ErrNotOwned)
}
