package memmgr

import (
	"math"
	"testing"

	"github.com/cznic/mathutil"
)

func newTestFixedAllocator(blockSize, numBlocks int) *fixedAllocator {
	return newFixedAllocator(blockSize, numBlocks)
}

func TestFixedAllocatorGrowsAcrossChunks(t *testing.T) {
	f := newTestFixedAllocator(16, 4)
	defer drainFixed(f)

	var blocks [][]byte
	for i := 0; i < 10; i++ {
		b, err := f.allocate()
		if err != nil {
			t.Fatal(err)
		}
		if b == nil {
			t.Fatalf("unexpected nil at allocation %d", i)
		}
		blocks = append(blocks, b)
	}
	if len(f.chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 10 blocks of 4 per chunk, got %d", len(f.chunks))
	}
	if f.isCorrupt() {
		t.Fatal("allocator reports corrupt after growth")
	}

	for _, b := range blocks {
		if !f.deallocate(b, nil) {
			t.Fatal("deallocate reported the block as not owned")
		}
	}
	if f.isCorrupt() {
		t.Fatal("allocator reports corrupt after full drain")
	}
}

// TestFixedAllocatorAtMostOneEmptyChunk exercises spec.md §8 property 2
// across a long randomized alloc/dealloc sequence.
func TestFixedAllocatorAtMostOneEmptyChunk(t *testing.T) {
	const blockSize, numBlocks = 8, 6
	f := newTestFixedAllocator(blockSize, numBlocks)
	defer drainFixed(f)

	rng, err := mathutil.NewFC32(0, math.MaxInt32, true)
	if err != nil {
		t.Fatal(err)
	}
	rng.Seed(7)

	var live [][]byte
	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rng.Next()%3 != 0 {
			b, err := f.allocate()
			if err != nil {
				t.Fatal(err)
			}
			if b != nil {
				live = append(live, b)
			}
		} else {
			idx := int(rng.Next()) % len(live)
			f.deallocate(live[idx], nil)
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
		if n := f.countEmptyChunks(); n > 1 {
			t.Fatalf("found %d empty chunks after operation %d, want <= 1", n, i)
		}
	}
}

func TestFixedAllocatorTrim(t *testing.T) {
	f := newTestFixedAllocator(8, 4)
	defer drainFixed(f)

	var blocks [][]byte
	for i := 0; i < 8; i++ {
		b, _ := f.allocate()
		blocks = append(blocks, b)
	}
	for _, b := range blocks {
		f.deallocate(b, nil)
	}
	if !f.trimEmptyChunk() {
		t.Fatal("expected trimEmptyChunk to find the cached empty chunk")
	}
	if f.trimEmptyChunk() {
		t.Fatal("trimEmptyChunk should be a no-op with nothing cached")
	}
}

func drainFixed(f *fixedAllocator) {
	for f.trimEmptyChunk() {
	}
	for _, c := range f.chunks {
		c.release()
	}
}
