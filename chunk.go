package memmgr

// chunk packs up to 255 equal-size blocks into one contiguous byte region
// and hands them out without a per-block header. The free list is
// intrusive and stealth: the first byte of every free block holds the
// index of the next free block, exactly as in
// _examples/original_source/SmallObjectAllocator/Chunk.cpp.
type chunk struct {
	data            []byte
	firstAvailable  uint8
	blocksAvailable int
}

// initChunk acquires numBlocks*blockSize bytes and resets the free list.
// blockSize and numBlocks must both be > 0 and numBlocks must fit in a
// byte (<= 255), matching the stealth index's width.
func initChunk(blockSize int, numBlocks int) (*chunk, error) {
	if blockSize <= 0 || numBlocks <= 0 || numBlocks > 255 {
		panic("memmgr: invalid chunk parameters")
	}
	data, err := acquireRegion(blockSize * numBlocks)
	if err != nil {
		return nil, err
	}
	c := &chunk{data: data}
	c.reset(blockSize, numBlocks)
	return c, nil
}

// reset rebuilds the free list in place, threading indices 1..numBlocks
// through the first byte of each block.
func (c *chunk) reset(blockSize int, numBlocks int) {
	c.firstAvailable = 0
	c.blocksAvailable = numBlocks
	for i := 0; i < numBlocks; i++ {
		c.data[i*blockSize] = byte(i + 1)
	}
}

// release returns the chunk's backing region to the OS.
func (c *chunk) release() error {
	err := releaseRegion(c.data)
	c.data = nil
	return err
}

// allocate hands out the block at firstAvailable, or nil if the chunk is
// full. blockSize is supplied by the caller (FixedAllocator), not stored,
// matching the source's size-bearing (not size-recording) design.
func (c *chunk) allocate(blockSize int) []byte {
	if c.blocksAvailable == 0 {
		return nil
	}
	offset := int(c.firstAvailable) * blockSize
	c.firstAvailable = c.data[offset]
	c.blocksAvailable--
	return c.data[offset : offset+blockSize : offset+blockSize]
}

// deallocate returns the block at p (a slice previously returned by
// allocate, still viewed over this chunk's data) to the free list. p must
// start at a block boundary within this chunk.
func (c *chunk) deallocate(p []byte, blockSize int) {
	offset := c.offsetOf(p)
	if offset < 0 || offset%blockSize != 0 {
		panic("memmgr: deallocate of misaligned pointer")
	}
	index := offset / blockSize
	c.data[offset] = c.firstAvailable
	c.firstAvailable = byte(index)
	c.blocksAvailable++
}

// offsetOf returns the byte offset of p's first element within this chunk's
// region, or -1 if it does not lie inside it.
func (c *chunk) offsetOf(p []byte) int {
	if len(c.data) == 0 || len(p) == 0 {
		return -1
	}
	base := &c.data[0]
	head := &p[0]
	off := bytePointerDiff(base, head)
	if off < 0 || off >= len(c.data) {
		return -1
	}
	return off
}

func (c *chunk) hasBlock(p []byte) bool {
	return c.offsetOf(p) >= 0
}

// isFilled reports whether the chunk has no free blocks left.
func (c *chunk) isFilled() bool { return c.blocksAvailable == 0 }

// hasAvailable reports whether every block in the chunk is free.
func (c *chunk) hasAvailable(numBlocks int) bool { return c.blocksAvailable == numBlocks }

// isCorrupt audits the chunk's structural invariants. deep walks the
// stealth free list exactly blocksAvailable steps, verifying that every
// visited index is < numBlocks and appears at most once.
func (c *chunk) isCorrupt(numBlocks int, blockSize int, deep bool) bool {
	if c.blocksAvailable > numBlocks {
		return true
	}
	if int(c.firstAvailable) >= numBlocks && c.blocksAvailable > 0 {
		return true
	}
	if !deep {
		return false
	}

	var seen [256]bool
	idx := c.firstAvailable
	for i := 0; i < c.blocksAvailable; i++ {
		if int(idx) >= numBlocks {
			return true
		}
		if seen[idx] {
			return true
		}
		seen[idx] = true
		idx = c.data[int(idx)*blockSize]
	}
	return false
}
