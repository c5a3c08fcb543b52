package memmgr

// fixedAllocator presents an unbounded supply of blockSize-sized blocks by
// managing a growable set of chunks, minimising fragmentation at chunk
// granularity. Grounded on
// _examples/original_source/SmallObjectAllocator/FixedAllocator.cpp, with
// the cursor/hysteresis/vicinity-search shape it implies.
type fixedAllocator struct {
	blockSize int
	numBlocks int

	chunks []*chunk

	allocCursor   *chunk
	deallocCursor *chunk
	emptyChunk    *chunk
}

func newFixedAllocator(blockSize, numBlocks int) *fixedAllocator {
	if blockSize <= 0 || numBlocks <= 0 || numBlocks > 255 {
		panic("memmgr: invalid fixed allocator parameters")
	}
	return &fixedAllocator{blockSize: blockSize, numBlocks: numBlocks}
}

// allocate returns a new block, growing the chunk set if necessary.
func (f *fixedAllocator) allocate() ([]byte, error) {
	if f.allocCursor == nil || f.allocCursor.isFilled() {
		if f.emptyChunk != nil {
			f.allocCursor = f.emptyChunk
			f.emptyChunk = nil
		} else {
			found := false
			for _, c := range f.chunks {
				if !c.isFilled() {
					f.allocCursor = c
					found = true
					break
				}
			}
			if !found {
				c, err := initChunk(f.blockSize, f.numBlocks)
				if err != nil {
					return nil, err
				}
				f.chunks = append(f.chunks, c)
				f.allocCursor = c
				f.deallocCursor = c
			}
		}
	}

	if f.allocCursor == f.emptyChunk {
		f.emptyChunk = nil
	}

	if trace {
		logger.Debug("fixedAllocator.allocate", traceFields("blockSize", f.blockSize)...)
	}
	return f.allocCursor.allocate(f.blockSize), nil
}

// deallocate returns p to the chunk that owns it. hint, if non-nil and
// owning p, short-circuits the search. It reports whether p was owned by
// this allocator.
func (f *fixedAllocator) deallocate(p []byte, hint *chunk) bool {
	c := f.findOwner(p, hint)
	if c == nil {
		return false
	}
	f.deallocCursor = c
	f.doDeallocate(p, c)
	return true
}

func (f *fixedAllocator) findOwner(p []byte, hint *chunk) *chunk {
	if hint != nil && hint.hasBlock(p) {
		return hint
	}
	if f.deallocCursor != nil && f.deallocCursor.hasBlock(p) {
		return f.deallocCursor
	}
	if f.allocCursor != nil && f.allocCursor.hasBlock(p) {
		return f.allocCursor
	}
	return f.vicinityFind(p)
}

// vicinityFind expands outward from deallocCursor's position by an
// increasing window, which tends to find the owning chunk quickly for
// deallocation patterns with spatial locality.
func (f *fixedAllocator) vicinityFind(p []byte) *chunk {
	if len(f.chunks) == 0 {
		return nil
	}
	center := 0
	for i, c := range f.chunks {
		if c == f.deallocCursor {
			center = i
			break
		}
	}
	for d := 0; ; d++ {
		lo, hi := center-d, center+d
		found := false
		if lo >= 0 {
			if f.chunks[lo].hasBlock(p) {
				return f.chunks[lo]
			}
			found = true
		}
		if hi != lo && hi < len(f.chunks) {
			if f.chunks[hi].hasBlock(p) {
				return f.chunks[hi]
			}
			found = true
		}
		if !found {
			return nil
		}
	}
}

// doDeallocate frees p within c and maintains the at-most-one-empty-chunk
// invariant, releasing whichever empty chunk would otherwise be the second
// one (but never the very last chunk standing).
func (f *fixedAllocator) doDeallocate(p []byte, c *chunk) {
	c.deallocate(p, f.blockSize)

	if !c.hasAvailable(f.numBlocks) {
		return
	}

	if f.emptyChunk != nil {
		f.releaseRedundantEmpty(c)
	}
	f.emptyChunk = f.deallocCursor
}

// releaseRedundantEmpty is called when a deallocation just produced a
// second empty chunk. It releases the previously cached empty chunk,
// swapping it into the last slot of the chunks slice first so it can be
// popped; justEmptied is kept.
func (f *fixedAllocator) releaseRedundantEmpty(justEmptied *chunk) {
	last := len(f.chunks) - 1
	lastChunk := f.chunks[last]

	toRelease := f.emptyChunk
	if lastChunk != f.emptyChunk {
		idx := f.indexOf(f.emptyChunk)
		f.chunks[idx], f.chunks[last] = f.chunks[last], f.chunks[idx]
	}
	toRelease.release()
	f.chunks = f.chunks[:last]
	f.emptyChunk = nil

	if f.allocCursor == toRelease {
		f.allocCursor = justEmptied
	}
	if f.deallocCursor == toRelease {
		f.deallocCursor = justEmptied
	}
}

func (f *fixedAllocator) indexOf(c *chunk) int {
	for i, cc := range f.chunks {
		if cc == c {
			return i
		}
	}
	return -1
}

// trimEmptyChunk releases the cached empty chunk, if any, reporting
// whether it did anything.
func (f *fixedAllocator) trimEmptyChunk() bool {
	if f.emptyChunk == nil {
		return false
	}
	last := len(f.chunks) - 1
	idx := f.indexOf(f.emptyChunk)
	f.chunks[idx], f.chunks[last] = f.chunks[last], f.chunks[idx]

	f.emptyChunk.release()
	f.chunks = f.chunks[:last]
	f.emptyChunk = nil

	f.reseatCursors()
	return true
}

// trimChunkList shrinks the backing slice's capacity down to its length and
// re-seats the cursors to the front/back of the (possibly reallocated)
// slice, mirroring the source's copy-swap trim.
func (f *fixedAllocator) trimChunkList() bool {
	if cap(f.chunks) == len(f.chunks) {
		return false
	}
	f.chunks = append(make([]*chunk, 0, len(f.chunks)), f.chunks...)
	f.reseatCursors()
	return true
}

func (f *fixedAllocator) reseatCursors() {
	if len(f.chunks) == 0 {
		f.allocCursor = nil
		f.deallocCursor = nil
		return
	}
	f.allocCursor = f.chunks[len(f.chunks)-1]
	f.deallocCursor = f.chunks[0]
}

// countEmptyChunks reports the number of fully-free chunks (0 or 1 under
// the at-most-one-empty invariant).
func (f *fixedAllocator) countEmptyChunks() int {
	n := 0
	for _, c := range f.chunks {
		if c.hasAvailable(f.numBlocks) {
			n++
		}
	}
	return n
}

// hasBlock reports whether p is owned by some chunk in this allocator.
func (f *fixedAllocator) hasBlock(p []byte) *chunk {
	for _, c := range f.chunks {
		if c.hasBlock(p) {
			return c
		}
	}
	return nil
}

// isCorrupt performs the structural audit described in spec.md §4.2.
func (f *fixedAllocator) isCorrupt() bool {
	if len(f.chunks) == 0 {
		return f.allocCursor != nil || f.deallocCursor != nil || f.emptyChunk != nil
	}
	if f.allocCursor != nil && f.indexOf(f.allocCursor) < 0 {
		return true
	}
	if f.deallocCursor != nil && f.indexOf(f.deallocCursor) < 0 {
		return true
	}
	if f.emptyChunk != nil {
		if f.indexOf(f.emptyChunk) < 0 || !f.emptyChunk.hasAvailable(f.numBlocks) {
			return true
		}
	}
	for _, c := range f.chunks {
		if c.isCorrupt(f.numBlocks, f.blockSize, true) {
			return true
		}
	}
	return false
}
