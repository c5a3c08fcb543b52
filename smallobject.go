package memmgr

// SmallObjectAllocator owns one fixedAllocator per discrete block size up
// to maxObjectSize, quantised by alignment. Requests above maxObjectSize
// fall through to the Go heap, mirroring the source's DefaultAllocator
// fallback in
// _examples/original_source/SmallObjectAllocator/SmallObjectAllocator.cpp.
type SmallObjectAllocator struct {
	pageSize      int
	maxObjectSize int
	alignment     int

	pools []*fixedAllocator
}

// NewSmallObjectAllocator builds the K = ceil(maxObjectSize/alignment)
// pools, pool i serving blocks of size (i+1)*alignment, with per-pool
// block counts clamped to [minPerChunk, maxPerChunk] (maxPerChunk <= 255).
func NewSmallObjectAllocator(pageSize, maxObjectSize, alignment, minPerChunk, maxPerChunk int) (*SmallObjectAllocator, error) {
	if alignment <= 0 {
		panic("memmgr: alignment must be > 0")
	}
	if maxObjectSize <= 0 {
		panic("memmgr: maxObjectSize must be > 0")
	}
	if maxObjectSize%alignment != 0 {
		panic("memmgr: alignment must divide maxObjectSize")
	}
	if pageSize < alignment {
		panic("memmgr: pageSize must be >= alignment")
	}
	if maxPerChunk > 255 {
		panic("memmgr: maxPerChunk must be <= 255")
	}

	k := ceilDiv(maxObjectSize, alignment)
	s := &SmallObjectAllocator{
		pageSize:      pageSize,
		maxObjectSize: maxObjectSize,
		alignment:     alignment,
		pools:         make([]*fixedAllocator, k),
	}
	for i := 0; i < k; i++ {
		blockSize := (i + 1) * alignment
		numBlocks := clamp(pageSize/blockSize, minPerChunk, maxPerChunk)
		if numBlocks < 1 {
			numBlocks = 1
		}
		if numBlocks > 255 {
			numBlocks = 255
		}
		s.pools[i] = newFixedAllocator(blockSize, numBlocks)
	}
	return s, nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// poolIndex maps n bytes to the pool serving it: i = ceil(n/A) - 1.
func (s *SmallObjectAllocator) poolIndex(n int) int {
	return ceilDiv(n, s.alignment) - 1
}

// Allocate serves n bytes. n == 0 is treated as n == 1. Requests larger
// than maxObjectSize are served directly from the Go heap; doThrow has no
// effect there since Go's allocator itself panics on OOM. If the target
// pool is momentarily exhausted, trimExcessMemory runs once and the
// allocation is retried before giving up.
func (s *SmallObjectAllocator) Allocate(n int, doThrow bool) ([]byte, error) {
	if n == 0 {
		n = 1
	}
	if n > s.maxObjectSize {
		b := make([]byte, n)
		return b, nil
	}

	idx := s.poolIndex(n)
	b, err := s.pools[idx].allocate()
	if b == nil {
		s.TrimExcessMemory()
		b, err = s.pools[idx].allocate()
	}
	if err != nil {
		if doThrow {
			return nil, err
		}
		return nil, nil
	}
	if b == nil && doThrow {
		return nil, ErrExhausted
	}
	if b != nil {
		// Trim the block's length down to the bytes actually requested,
		// keeping its capacity at the block boundary, mirroring the teacher's Malloc (len=size,
		// cap=1<<log): callers may reslice up to the block boundary,
		// but the result of appending past it must never be passed
		// back to Deallocate.
		b = b[:n:cap(b)]
	}
	return b, nil
}

// Deallocate returns p, known to be n bytes, to its owning pool. Sizes
// above maxObjectSize came from the Go-heap fallback and are ignored here
// (the Go GC reclaims them).
func (s *SmallObjectAllocator) Deallocate(p []byte, n int) {
	if len(p) == 0 {
		return
	}
	if n > s.maxObjectSize {
		return
	}
	if n == 0 {
		n = 1
	}
	idx := s.poolIndex(n)
	s.pools[idx].deallocate(p, nil)
}

// DeallocateUnsized returns p to whichever pool owns it, without the
// caller having to track the original size. If no pool claims it, it is
// assumed to have come from the oversize fallback (left for the GC) and
// ErrNotOwned is returned so callers can tell the two cases apart.
func (s *SmallObjectAllocator) DeallocateUnsized(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	for _, pool := range s.pools {
		if c := pool.hasBlock(p); c != nil {
			pool.deallocate(p, c)
			return nil
		}
	}
	return ErrNotOwned
}

// TrimExcessMemory releases every pool's cached empty chunk and shrinks
// every pool's chunk list capacity, reporting whether anything changed.
func (s *SmallObjectAllocator) TrimExcessMemory() bool {
	found := false
	for _, pool := range s.pools {
		if pool.trimEmptyChunk() {
			found = true
		}
	}
	for _, pool := range s.pools {
		if pool.trimChunkList() {
			found = true
		}
	}
	return found
}

// IsCorrupt audits every pool.
func (s *SmallObjectAllocator) IsCorrupt() bool {
	if s.alignment <= 0 || s.maxObjectSize <= 0 || s.pools == nil {
		return true
	}
	for _, pool := range s.pools {
		if pool.isCorrupt() {
			return true
		}
	}
	return false
}

// Stats reports the small-object pools' outstanding chunk/empty-chunk
// counts, supplementing spec.md §8's SA-2 scenario.
type SmallObjectStats struct {
	PoolCount   int
	ChunkCount  int
	EmptyChunks int
}

func (s *SmallObjectAllocator) Stats() SmallObjectStats {
	st := SmallObjectStats{PoolCount: len(s.pools)}
	for _, pool := range s.pools {
		st.ChunkCount += len(pool.chunks)
		st.EmptyChunks += pool.countEmptyChunks()
	}
	return st
}
