package memmgr

import "github.com/google/btree"

// sizeKey is both the ordering key and the tree item stored for each free
// block: entries order first by size, then by a monotonic sequence number
// so that multiple free blocks of the same size can coexist in the tree,
// per spec.md §4.4's "key collisions are permitted". node is carried along
// but never participates in ordering.
type sizeKey struct {
	size int
	seq  uint64
	node *freeNode
}

func (a sizeKey) Less(other btree.Item) bool {
	b := other.(sizeKey)
	if a.size != b.size {
		return a.size < b.size
	}
	return a.seq < b.seq
}

// orderedSizeIndex is an ordered map from size to free-list node,
// supporting "smallest entry with size >= k" lookup, per spec.md §4.4. It
// is backed by github.com/google/btree rather than the source's red-black
// tree (see DESIGN.md's Open Question decisions).
type orderedSizeIndex struct {
	tree *btree.BTree
	next uint64
}

func newOrderedSizeIndex() *orderedSizeIndex {
	return &orderedSizeIndex{tree: btree.New(32)}
}

// insert adds node under size and remembers the key on the node itself so
// remove can address exactly this entry even when other entries share the
// same size.
func (idx *orderedSizeIndex) insert(size int, node *freeNode) {
	idx.next++
	key := sizeKey{size: size, seq: idx.next, node: node}
	idx.tree.ReplaceOrInsert(key)
	node.indexKey = key
}

// remove deletes the entry previously inserted for this node.
func (idx *orderedSizeIndex) remove(node *freeNode) {
	idx.tree.Delete(node.indexKey)
}

// searchAtLeast returns some free node whose size is >= size, or nil if
// none exists. The B-tree's ascending order makes this the smallest
// (size, seq) pair >= (size, 0), i.e. true best-fit.
func (idx *orderedSizeIndex) searchAtLeast(size int) *freeNode {
	var found *freeNode
	idx.tree.AscendGreaterOrEqual(sizeKey{size: size, seq: 0}, func(item btree.Item) bool {
		found = item.(sizeKey).node
		return false
	})
	return found
}

func (idx *orderedSizeIndex) len() int { return idx.tree.Len() }
