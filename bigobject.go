package memmgr

// freeNode is one entry in the address-ordered doubly-linked free list.
// address/size are byte offsets within the big region, not raw pointers;
// Go's GC owns the node graph, so unlike
// _examples/original_source/GeneralAllocator/GeneralAllocator.h's
// FreeBlock, there is no destructor chain to worry about.
type freeNode struct {
	address int
	size    int
	prev    *freeNode
	next    *freeNode

	indexKey sizeKey // the orderedSizeIndex entry mirroring this node
}

// BigObjectAllocator owns one large contiguous region and serves requests
// by best-fit, coalescing adjacent free blocks on deallocation. Grounded
// on _examples/original_source/GeneralAllocator/BigObjectAllocator.cpp,
// corrected per spec.md §9's open questions (range check, always-linked
// inserts).
type BigObjectAllocator struct {
	region []byte
	head   *freeNode
	index  *orderedSizeIndex
}

// NewBigObjectAllocator acquires a totalSize-byte region and seeds the
// free list with one node spanning it entirely.
func NewBigObjectAllocator(totalSize int) (*BigObjectAllocator, error) {
	if totalSize <= 0 {
		panic("memmgr: bigTotal must be > 0")
	}
	region, err := acquireRegion(totalSize)
	if err != nil {
		return nil, err
	}
	b := &BigObjectAllocator{region: region, index: newOrderedSizeIndex()}
	head := &freeNode{address: 0, size: totalSize}
	b.head = head
	b.index.insert(head.size, head)
	return b, nil
}

// Close releases the region back to the OS.
func (b *BigObjectAllocator) Close() error {
	err := releaseRegion(b.region)
	b.region = nil
	b.head = nil
	return err
}

// Allocate serves n bytes by best-fit: the free block of smallest size >=
// n is front-sliced, shrinking it in place or removing it entirely if it
// is consumed exactly. Returns (nil, nil) on exhaustion, per spec.md §4.5/§7.
func (b *BigObjectAllocator) Allocate(n int) ([]byte, error) {
	if n <= 0 {
		panic("memmgr: big allocation size must be > 0")
	}
	node := b.index.searchAtLeast(n)
	if node == nil {
		return nil, nil
	}

	addr := node.address
	switch {
	case node.size > n:
		b.index.remove(node)
		node.address += n
		node.size -= n
		b.index.insert(node.size, node)
	case node.size == n:
		b.unlink(node)
		b.index.remove(node)
	}

	if trace {
		logger.Debug("BigObjectAllocator.Allocate", traceFields("size", n)...)
	}
	return b.region[addr : addr+n : addr+n], nil
}

// Deallocate returns the n-byte block starting at p to the free list,
// coalescing with an address-adjacent predecessor and/or successor. p must
// be a slice previously returned by Allocate (or a sub-slice sharing its
// start); pointers outside the region are silently ignored, per spec.md §7.
func (b *BigObjectAllocator) Deallocate(p []byte, n int) {
	if len(p) == 0 || len(b.region) == 0 {
		return
	}
	addr := b.offsetOf(p)
	if addr < 0 || addr+n > len(b.region) {
		return
	}

	prev, succ := b.neighbours(addr)

	switch {
	case prev != nil && prev.address+prev.size == addr && succ != nil && addr+n == succ.address:
		b.index.remove(prev)
		b.index.remove(succ)
		prev.size = prev.size + n + succ.size
		b.unlink(succ)
		b.index.insert(prev.size, prev)

	case prev != nil && prev.address+prev.size == addr:
		b.index.remove(prev)
		prev.size += n
		b.index.insert(prev.size, prev)

	case succ != nil && addr+n == succ.address:
		b.index.remove(succ)
		succ.address = addr
		succ.size += n
		b.index.insert(succ.size, succ)

	default:
		b.insertBetween(prev, succ, addr, n)
	}

	if trace {
		logger.Debug("BigObjectAllocator.Deallocate", traceFields("size", n)...)
	}
}

// neighbours returns the free nodes immediately surrounding addr in
// address order: prev is the last node with address <= addr, succ is the
// first node with address > addr.
func (b *BigObjectAllocator) neighbours(addr int) (prev, succ *freeNode) {
	for n := b.head; n != nil; n = n.next {
		if n.address > addr {
			return prev, n
		}
		prev = n
	}
	return prev, nil
}

func (b *BigObjectAllocator) insertBetween(prev, succ *freeNode, addr, size int) {
	node := &freeNode{address: addr, size: size, prev: prev, next: succ}
	if prev != nil {
		prev.next = node
	} else {
		b.head = node
	}
	if succ != nil {
		succ.prev = node
	}
	b.index.insert(size, node)
}

func (b *BigObjectAllocator) unlink(node *freeNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		b.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	node.prev, node.next = nil, nil
}

func (b *BigObjectAllocator) offsetOf(p []byte) int {
	if len(b.region) == 0 || len(p) == 0 {
		return -1
	}
	off := bytePointerDiff(&b.region[0], &p[0])
	if off < 0 || off >= len(b.region) {
		return -1
	}
	return off
}

// IsCorrupt audits that the free list and size index agree and that no
// two free nodes are address-adjacent (an un-coalesced pair would be a
// correctness bug, per spec.md §4.5's invariant).
func (b *BigObjectAllocator) IsCorrupt() bool {
	count := 0
	for n := b.head; n != nil; n = n.next {
		count++
		if n.next != nil && n.address+n.size >= n.next.address {
			return true
		}
		if n.next != nil && n.next.prev != n {
			return true
		}
		if n.indexKey.node != n || n.indexKey.size != n.size || !b.index.tree.Has(n.indexKey) {
			return true
		}
	}
	if count != b.index.len() {
		return true
	}
	return false
}

// Stats reports the free list's node count and total free bytes.
type BigObjectStats struct {
	FreeNodes int
	FreeBytes int
	TotalSize int
}

func (b *BigObjectAllocator) Stats() BigObjectStats {
	st := BigObjectStats{TotalSize: len(b.region)}
	for n := b.head; n != nil; n = n.next {
		st.FreeNodes++
		st.FreeBytes += n.size
	}
	return st
}
