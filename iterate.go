// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import "github.com/netradix/pctrie/internal/bitkey"

// Violation describes a node that fails the compression invariant
// (invariant 3: an internal node, one with no route of its own, must have
// both children present). It is a diagnostic aid, not expected to ever be
// produced by a correct sequence of operations.
type Violation struct {
	Depth int
	// NoRoute is always true; a Violation only ever reports this shape.
	NoRoute     bool
	ChildCount  int
}

// iterateEngine walks every route stored in a node depth-first: visit
// root[0]'s subtree then root[1]'s, accumulating the full key as edges are
// merged in. The default route, held on the head, is not visited.
// When reset is true, every visited node is
// released back to the arena after both of its subtrees have been
// visited, and the head is cleared once traversal completes.
func iterateEngine[K bitkey.Key[K]](a *arena[K], h *head[K], visit func(key K, depth int, hop NextHop), reset bool) {
	var zero K
	for slot := byte(0); slot < 2; slot++ {
		iterateRec(a, h.root[slot], zero, 0, visit, reset)
	}
	if reset {
		h.reset()
	}
}

func iterateRec[K bitkey.Key[K]](a *arena[K], idx nodeIndex, acc K, offset int, visit func(K, int, NextHop), reset bool) {
	if idx == noIndex {
		return
	}
	n := a.at(idx)
	acc = acc.Merge(n.key, offset)
	depth := offset + n.keyLen

	if n.nextHop.Valid() {
		visit(acc, depth, n.nextHop)
	}

	child0, child1 := n.child[0], n.child[1]
	iterateRec(a, child0, acc, depth, visit, reset)
	iterateRec(a, child1, acc, depth, visit, reset)

	if reset {
		a.release(idx)
	}
}

// checkEngine walks the live trie without mutating it and reports every
// node that violates the compression invariant.
func checkEngine[K bitkey.Key[K]](a *arena[K], h *head[K]) []Violation {
	var out []Violation
	for slot := byte(0); slot < 2; slot++ {
		checkRec(a, h.root[slot], 0, &out)
	}
	return out
}

func checkRec[K bitkey.Key[K]](a *arena[K], idx nodeIndex, offset int, out *[]Violation) {
	if idx == noIndex {
		return
	}
	n := a.at(idx)
	depth := offset + n.keyLen

	childCount := 0
	if n.child[0] != noIndex {
		childCount++
	}
	if n.child[1] != noIndex {
		childCount++
	}
	if !n.nextHop.Valid() && childCount < 2 {
		*out = append(*out, Violation{Depth: depth, NoRoute: true, ChildCount: childCount})
	}

	checkRec(a, n.child[0], depth, out)
	checkRec(a, n.child[1], depth, out)
}
