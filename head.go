// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import "github.com/netradix/pctrie/internal/bitkey"

// head is the per-family root descriptor: the default route, the two
// possible roots (keyed by the first bit of the address), and the
// running bookkeeping counters for the family.
type head[K bitkey.Key[K]] struct {
	defaultNextHop NextHop
	root           [2]nodeIndex

	totalNodes  int
	totalRoutes int
	addCount    int
	delCount    int
}

// newHead returns a zero-initialized head, matching the reference's
// contract that the head is created by the caller with default_next_hop
// cleared to none.
func newHead[K bitkey.Key[K]]() *head[K] {
	return &head[K]{
		defaultNextHop: NoNextHop,
		root:           [2]nodeIndex{noIndex, noIndex},
	}
}

// reset clears the head's fields only; it does not free any nodes still
// referenced by root[0]/root[1] — that is iterateEngine's job when called
// with reset=true.
func (h *head[K]) reset() {
	h.defaultNextHop = NoNextHop
	h.root[0] = noIndex
	h.root[1] = noIndex
	h.totalNodes = 0
	h.totalRoutes = 0
	h.addCount = 0
	h.delCount = 0
}
