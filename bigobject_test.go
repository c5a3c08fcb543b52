package memmgr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBigObjectAllocator(t *testing.T, totalSize int) *BigObjectAllocator {
	t.Helper()
	b, err := NewBigObjectAllocator(totalSize)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

// TestBigObjectAllocatorBA1 is spec.md §8's BA-1 scenario.
func TestBigObjectAllocatorBA1(t *testing.T) {
	b := newTestBigObjectAllocator(t, 1024)

	p1, err := b.Allocate(300)
	require.NoError(t, err)
	require.NotNil(t, p1)

	p2, err := b.Allocate(200)
	require.NoError(t, err)
	require.NotNil(t, p2)

	p3, err := b.Allocate(500)
	require.NoError(t, err)
	require.NotNil(t, p3)

	require.Equal(t, BigObjectStats{FreeNodes: 1, FreeBytes: 24, TotalSize: 1024}, b.Stats())

	b.Deallocate(p2, 200)
	require.Equal(t, 2, b.Stats().FreeNodes)
	require.Equal(t, 224, b.Stats().FreeBytes)

	b.Deallocate(p1, 300)
	require.Equal(t, 2, b.Stats().FreeNodes)
	require.Equal(t, 524, b.Stats().FreeBytes)

	b.Deallocate(p3, 500)
	require.Equal(t, BigObjectStats{FreeNodes: 1, FreeBytes: 1024, TotalSize: 1024}, b.Stats())
	require.False(t, b.IsCorrupt())
}

// TestBigObjectAllocatorBA2: deallocating a pointer outside the region is a
// no-op.
func TestBigObjectAllocatorBA2(t *testing.T) {
	b := newTestBigObjectAllocator(t, 256)
	before := b.Stats()

	foreign := make([]byte, 16)
	b.Deallocate(foreign, 16)

	require.Equal(t, before, b.Stats())
}

// TestBigObjectAllocatorCoalescesEverything is spec.md §8 property 7: after
// freeing every allocation from a fresh allocator, exactly one node spans
// the whole region.
func TestBigObjectAllocatorCoalescesEverything(t *testing.T) {
	const total = 4096
	b := newTestBigObjectAllocator(t, total)

	var ptrs [][]byte
	sizes := []int{64, 128, 256, 32, 512, 1024}
	for _, n := range sizes {
		p, err := b.Allocate(n)
		require.NoError(t, err)
		require.NotNil(t, p)
		ptrs = append(ptrs, p)
	}

	// Free out of allocation order to exercise every coalesce branch.
	order := []int{2, 0, 4, 1, 5, 3}
	for _, i := range order {
		b.Deallocate(ptrs[i], sizes[i])
	}

	require.Equal(t, BigObjectStats{FreeNodes: 1, FreeBytes: total, TotalSize: total}, b.Stats())
	require.False(t, b.IsCorrupt())
}

func TestBigObjectAllocatorExhaustion(t *testing.T) {
	b := newTestBigObjectAllocator(t, 64)

	p, err := b.Allocate(64)
	require.NoError(t, err)
	require.NotNil(t, p)

	p2, err := b.Allocate(1)
	require.NoError(t, err)
	require.Nil(t, p2)
}
