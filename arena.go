// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import (
	"unsafe"

	"github.com/bits-and-blooms/bitset"
	"github.com/netradix/pctrie/internal/bitkey"
)

// nodeIndex is a handle into an arena's node storage. noIndex is the
// sentinel meaning "no node" (absent child, absent parent, absent root).
type nodeIndex int32

const noIndex nodeIndex = -1

// node is one edge-and-subtree record of the trie. Parent/child references
// are arena-relative indices rather than pointers, so a node's storage can
// be reclaimed and reused without invalidating anyone else's reference to
// it, with one arena per address family.
type node[K bitkey.Key[K]] struct {
	keyLen  int
	key     K
	nextHop NextHop
	parent  nodeIndex
	child   [2]nodeIndex
}

// arena is the fixed-capacity node pool for one address family. Free node
// indices are tracked in a circular-queue free list of length N+1 (the
// extra slot lets front==rear mean "empty" and distinguish it from "full").
type arena[K bitkey.Key[K]] struct {
	nodes []node[K]
	free  []nodeIndex
	front int
	rear  int
	live  *bitset.BitSet
}

// footprint returns the number of bytes a caller-managed buffer would need
// to back an arena sized for maxRoutes, mirroring the reference C API's
// footprint_v4/v6. This implementation allocates its own Go slices rather
// than carving a caller-provided buffer (see DESIGN.md), but keeps this
// function as a sizing oracle so code porting the reference sizing
// arithmetic has a faithful equivalent to call.
func footprint[K bitkey.Key[K]](maxRoutes int) int {
	n := nodeCount(maxRoutes)
	var zn node[K]
	var zi nodeIndex
	return n*int(unsafe.Sizeof(zn)) + (n+1)*int(unsafe.Sizeof(zi))
}

// nodeCount returns N = 2*maxRoutes-1, the arena's node capacity, per
// invariant 7 (amortized: each route adds at most one terminal node plus
// at most one split node).
func nodeCount(maxRoutes int) int {
	if maxRoutes <= 0 {
		return 0
	}
	return 2*maxRoutes - 1
}

// newArena allocates and initializes an arena sized for maxRoutes routes,
// filling the free queue with handles to all N nodes in order.
func newArena[K bitkey.Key[K]](maxRoutes int) *arena[K] {
	n := nodeCount(maxRoutes)
	a := &arena[K]{
		nodes: make([]node[K], n),
		free:  make([]nodeIndex, n+1),
		live:  bitset.New(uint(n)),
	}
	for i := range a.nodes {
		a.nodes[i].nextHop = NoNextHop
		a.nodes[i].parent = noIndex
		a.nodes[i].child[0] = noIndex
		a.nodes[i].child[1] = noIndex
		a.free[i] = nodeIndex(i)
	}
	a.rear = n
	return a
}

// cap reports the arena's total node capacity N.
func (a *arena[K]) cap() int { return len(a.nodes) }

func (a *arena[K]) isEmpty() bool { return a.front == a.rear }

func (a *arena[K]) isFull() bool {
	return (a.rear+1)%len(a.free) == a.front
}

// poolFreeCount returns the number of currently unused nodes.
func (a *arena[K]) poolFreeCount() int {
	n := len(a.free)
	if a.rear >= a.front {
		return a.rear - a.front
	}
	return n - a.front + a.rear
}

// poolCount returns the number of currently live (in-use) nodes.
func (a *arena[K]) poolCount() int {
	return len(a.nodes) - a.poolFreeCount()
}

// acquireBulk acquires k nodes, all-or-nothing: if fewer than k are free,
// nothing is taken and ErrExhausted is returned. Returned indices are
// reset to a clean zero-value node (nextHop=none, no parent, no children).
func (a *arena[K]) acquireBulk(k int) ([]nodeIndex, error) {
	if k == 0 {
		return nil, nil
	}
	if a.poolFreeCount() < k {
		return nil, ErrExhausted
	}
	out := make([]nodeIndex, k)
	for i := 0; i < k; i++ {
		idx := a.free[a.front]
		a.front = (a.front + 1) % len(a.free)
		out[i] = idx
		a.nodes[idx] = node[K]{nextHop: NoNextHop, parent: noIndex, child: [2]nodeIndex{noIndex, noIndex}}
		a.live.Set(uint(idx))
	}
	return out, nil
}

// release returns a node to the tail of the free queue. Releasing into an
// already-full queue is a programming error: invariant 7 guarantees it
// cannot happen in a correct caller, so this panics rather than silently
// corrupting the free list.
func (a *arena[K]) release(idx nodeIndex) {
	if a.isFull() {
		invariantViolation("release into full free queue")
	}
	a.free[a.rear] = idx
	a.rear = (a.rear + 1) % len(a.free)
	a.live.Clear(uint(idx))
}

// at returns a pointer to the node at idx for in-place mutation.
func (a *arena[K]) at(idx nodeIndex) *node[K] { return &a.nodes[idx] }

// liveNodes returns the bitset of currently live node indices, exposed for
// diagnostics and testing (not part of the reference C interface, but a
// natural extension given the bitset dependency already in play).
func (a *arena[K]) liveNodes() *bitset.BitSet { return a.live }
