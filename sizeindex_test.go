package memmgr

import "testing"

func TestOrderedSizeIndexSearchAtLeast(t *testing.T) {
	idx := newOrderedSizeIndex()

	n1 := &freeNode{address: 0, size: 10}
	n2 := &freeNode{address: 100, size: 20}
	n3 := &freeNode{address: 200, size: 20}
	idx.insert(n1.size, n1)
	idx.insert(n2.size, n2)
	idx.insert(n3.size, n3)

	got := idx.searchAtLeast(15)
	if got == nil || got.size != 20 {
		t.Fatalf("expected a size-20 node, got %#v", got)
	}

	if idx.searchAtLeast(21) != nil {
		t.Fatal("expected no match above the largest free block")
	}

	idx.remove(n2)
	idx.remove(n3)
	if idx.len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", idx.len())
	}
	if got := idx.searchAtLeast(5); got != n1 {
		t.Fatalf("expected the remaining node back, got %#v", got)
	}
}

func TestOrderedSizeIndexDuplicateSizes(t *testing.T) {
	idx := newOrderedSizeIndex()

	a := &freeNode{address: 0, size: 10}
	b := &freeNode{address: 10, size: 10}
	idx.insert(a.size, a)
	idx.insert(b.size, b)

	if idx.len() != 2 {
		t.Fatalf("expected both same-size entries to coexist, got len %d", idx.len())
	}

	idx.remove(a)
	if idx.len() != 1 {
		t.Fatalf("expected exactly one entry removed, got len %d", idx.len())
	}
	if got := idx.searchAtLeast(10); got != b {
		t.Fatalf("expected the surviving node b, got %#v", got)
	}
}
