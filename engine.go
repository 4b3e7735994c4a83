// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import "github.com/netradix/pctrie/internal/bitkey"

// lookupEngine implements the longest-prefix-match walk described for the
// trie lookup operation: start from the head's default route, descend
// while the address keeps matching compressed edges, and keep the deepest
// next-hop seen. Traversal depth is monotonic, so the last match recorded
// is always the longest.
func lookupEngine[K bitkey.Key[K]](a *arena[K], h *head[K], addr K) (NextHop, error) {
	var zero K
	w := zero.Width()

	best := h.defaultNextHop
	idx := h.root[addr.Bit(0)]
	offset := 0

	for idx != noIndex {
		n := a.at(idx)
		remaining := w - offset
		if n.keyLen > remaining {
			break
		}
		if n.key.DiffBit(addr, offset, n.keyLen) < n.keyLen {
			break
		}
		if n.nextHop.Valid() {
			best = n.nextHop
		}
		offset += n.keyLen
		if offset == w {
			break
		}
		idx = n.child[addr.Bit(offset)]
	}

	if !best.Valid() {
		return NoNextHop, ErrNotFound
	}
	return best, nil
}

// attachSlot rewires the pointer that reaches childIdx: either the head's
// root slot (when parentIdx is absent) or the parent node's child slot.
// It also fixes up childIdx's own parent back-reference, keeping invariant
// 6 (parent/child consistency) intact in one place.
func attachSlot[K bitkey.Key[K]](h *head[K], a *arena[K], parentIdx nodeIndex, slot byte, childIdx nodeIndex) {
	if parentIdx == noIndex {
		h.root[slot] = childIdx
	} else {
		a.at(parentIdx).child[slot] = childIdx
	}
	if childIdx != noIndex {
		a.at(childIdx).parent = parentIdx
	}
}

// addEngine inserts a route: sanitize, handle the default route specially,
// then descend carrying the parent slot back with us so the landing state
// (empty slot / exact match / mismatch / ancestor) can be resolved in place.
func addEngine[K bitkey.Key[K]](a *arena[K], h *head[K], addr K, depth int, hop NextHop) error {
	var zero K
	w := zero.Width()
	if depth < 0 || depth > w || !hop.Valid() {
		return ErrArgument
	}
	addr = addr.Mask(depth)

	if depth == 0 {
		h.defaultNextHop = hop
		return nil
	}

	parentIdx := noIndex
	slot := addr.Bit(0)
	curIdx := h.root[slot]
	offset := 0

	for curIdx != noIndex {
		n := a.at(curIdx)
		rem := depth - offset

		if n.keyLen <= rem {
			diff := n.key.DiffBit(addr, offset, n.keyLen)
			if diff < n.keyLen {
				return splitMismatch(a, h, parentIdx, slot, curIdx, addr, offset, depth, hop, diff)
			}
			offset += n.keyLen
			if offset == depth {
				if !n.nextHop.Valid() {
					h.totalRoutes++
					h.addCount++
				}
				n.nextHop = hop
				return nil
			}
			parentIdx = curIdx
			slot = addr.Bit(offset)
			curIdx = n.child[slot]
			continue
		}

		k := n.key.DiffBit(addr, offset, rem)
		if k < rem {
			return splitMismatch(a, h, parentIdx, slot, curIdx, addr, offset, depth, hop, k)
		}
		return splitAncestor(a, h, parentIdx, slot, curIdx, addr, offset, depth, hop)
	}

	// S1: empty slot.
	idxs, err := a.acquireBulk(1)
	if err != nil {
		return err
	}
	newIdx := idxs[0]
	nn := a.at(newIdx)
	nn.keyLen = depth - offset
	nn.key = addr.Extract(offset, depth-offset)
	nn.nextHop = hop
	attachSlot(h, a, parentIdx, slot, newIdx)

	h.totalNodes++
	h.totalRoutes++
	h.addCount++
	return nil
}

// splitMismatch implements S3 (and the S4 sub-case where the mismatch is
// found before the new prefix's remaining bits are exhausted): the
// existing node's edge is cut at bit k, producing a branch node X with two
// children, Y (the remainder of the existing edge, keeping the old node's
// route and subtree) and Z (the new route).
func splitMismatch[K bitkey.Key[K]](a *arena[K], h *head[K], parentIdx nodeIndex, slot byte, oldIdx nodeIndex, addr K, offset, depth int, hop NextHop, k int) error {
	idxs, err := a.acquireBulk(3)
	if err != nil {
		return err
	}
	xIdx, yIdx, zIdx := idxs[0], idxs[1], idxs[2]

	old := a.at(oldIdx)
	oldKeyLen := old.keyLen
	oldKey := old.key
	oldNextHop := old.nextHop
	oldChild0, oldChild1 := old.child[0], old.child[1]

	x := a.at(xIdx)
	x.keyLen = k
	x.key = oldKey.Extract(0, k)
	x.nextHop = NoNextHop

	y := a.at(yIdx)
	y.keyLen = oldKeyLen - k
	y.key = oldKey.Extract(k, oldKeyLen-k)
	y.nextHop = oldNextHop
	y.child[0], y.child[1] = oldChild0, oldChild1
	if oldChild0 != noIndex {
		a.at(oldChild0).parent = yIdx
	}
	if oldChild1 != noIndex {
		a.at(oldChild1).parent = yIdx
	}

	z := a.at(zIdx)
	z.keyLen = depth - (offset + k)
	z.key = addr.Extract(offset+k, depth-(offset+k))
	z.nextHop = hop

	x.child[y.key.Bit(0)] = yIdx
	x.child[z.key.Bit(0)] = zIdx
	a.at(yIdx).parent = xIdx
	a.at(zIdx).parent = xIdx

	a.release(oldIdx)
	attachSlot(h, a, parentIdx, slot, xIdx)

	h.totalNodes += 2 // 3 acquired, 1 released
	h.totalRoutes++
	h.addCount++
	return nil
}

// splitAncestor implements the S4 case where the new prefix is a strict
// ancestor of the existing node's edge: the existing edge is cut at
// d-offset, the new route is stored on the upper half (X), and the lower
// half (Y) keeps the old node's route and subtree as X's sole child.
func splitAncestor[K bitkey.Key[K]](a *arena[K], h *head[K], parentIdx nodeIndex, slot byte, oldIdx nodeIndex, addr K, offset, depth int, hop NextHop) error {
	idxs, err := a.acquireBulk(2)
	if err != nil {
		return err
	}
	xIdx, yIdx := idxs[0], idxs[1]
	rem := depth - offset

	old := a.at(oldIdx)
	oldKeyLen := old.keyLen
	oldKey := old.key
	oldNextHop := old.nextHop
	oldChild0, oldChild1 := old.child[0], old.child[1]

	x := a.at(xIdx)
	x.keyLen = rem
	x.key = oldKey.Extract(0, rem)
	x.nextHop = hop

	y := a.at(yIdx)
	y.keyLen = oldKeyLen - rem
	y.key = oldKey.Extract(rem, oldKeyLen-rem)
	y.nextHop = oldNextHop
	y.child[0], y.child[1] = oldChild0, oldChild1
	if oldChild0 != noIndex {
		a.at(oldChild0).parent = yIdx
	}
	if oldChild1 != noIndex {
		a.at(oldChild1).parent = yIdx
	}

	x.child[y.key.Bit(0)] = yIdx
	a.at(yIdx).parent = xIdx

	a.release(oldIdx)
	attachSlot(h, a, parentIdx, slot, xIdx)

	h.totalNodes++ // 2 acquired, 1 released
	h.totalRoutes++
	h.addCount++
	return nil
}

// delEngine removes a route: sanitize, handle the default route, then
// descend to the node whose edge ends exactly at depth. Depending on
// how many children the landed node has after clearing its route, it is
// left alone, merged with its sole remaining child, or detached entirely
// (possibly cascading one merge into its parent).
func delEngine[K bitkey.Key[K]](a *arena[K], h *head[K], addr K, depth int) error {
	var zero K
	w := zero.Width()
	if depth < 0 || depth > w {
		return ErrArgument
	}
	addr = addr.Mask(depth)

	if depth == 0 {
		if !h.defaultNextHop.Valid() {
			return ErrNotFound
		}
		h.defaultNextHop = NoNextHop
		return nil
	}

	parentIdx := noIndex
	slot := addr.Bit(0)
	curIdx := h.root[slot]
	offset := 0

descend:
	for curIdx != noIndex {
		n := a.at(curIdx)
		rem := depth - offset
		if n.keyLen > rem {
			return ErrNotFound
		}
		if n.key.DiffBit(addr, offset, n.keyLen) < n.keyLen {
			return ErrNotFound
		}
		offset += n.keyLen
		if offset == depth {
			break descend
		}
		parentIdx = curIdx
		slot = addr.Bit(offset)
		curIdx = n.child[slot]
	}

	if curIdx == noIndex {
		return ErrNotFound
	}
	n := a.at(curIdx)
	if !n.nextHop.Valid() {
		return ErrNotFound
	}
	n.nextHop = NoNextHop

	childCount := 0
	if n.child[0] != noIndex {
		childCount++
	}
	if n.child[1] != noIndex {
		childCount++
	}

	switch childCount {
	case 2:
		// Invariant 3 remains satisfied: both children still present.
	case 1:
		mergeNodes(a, h, parentIdx, slot, curIdx)
	case 0:
		detachAndCascade(a, h, parentIdx, slot, curIdx)
	}

	h.totalRoutes--
	h.delCount++
	return nil
}

// mergeNodes collapses n (exactly one child c) into a single node carrying
// the concatenation of both edges and c's route/children. Unlike the
// reference's literal "acquire M, then free N and C" order, this releases
// N and C first: a merge never increases live node count, so releasing
// first guarantees the subsequent acquire cannot spuriously report
// exhaustion.
func mergeNodes[K bitkey.Key[K]](a *arena[K], h *head[K], parentIdx nodeIndex, slot byte, nIdx nodeIndex) {
	n := a.at(nIdx)
	var cIdx nodeIndex
	if n.child[0] != noIndex {
		cIdx = n.child[0]
	} else {
		cIdx = n.child[1]
	}
	c := a.at(cIdx)

	mergedKeyLen := n.keyLen + c.keyLen
	mergedKey := n.key.Merge(c.key, n.keyLen)
	mergedNextHop := c.nextHop // see DESIGN.md: intentional, N's route was just cleared.
	child0, child1 := c.child[0], c.child[1]

	a.release(cIdx)
	a.release(nIdx)

	idxs, err := a.acquireBulk(1)
	if err != nil {
		invariantViolation("merge could not acquire a node after freeing two")
	}
	mIdx := idxs[0]
	m := a.at(mIdx)
	m.keyLen = mergedKeyLen
	m.key = mergedKey
	m.nextHop = mergedNextHop
	m.child[0], m.child[1] = child0, child1
	if child0 != noIndex {
		a.at(child0).parent = mIdx
	}
	if child1 != noIndex {
		a.at(child1).parent = mIdx
	}
	attachSlot(h, a, parentIdx, slot, mIdx)

	h.totalNodes--
}

// detachAndCascade frees a childless, route-less node and, if that leaves
// its parent with exactly one child and no route of its own, merges the
// parent with its remaining child too (invariant 3 would otherwise be
// violated).
func detachAndCascade[K bitkey.Key[K]](a *arena[K], h *head[K], parentIdx nodeIndex, slot byte, nIdx nodeIndex) {
	a.release(nIdx)
	h.totalNodes--
	attachSlot(h, a, parentIdx, slot, noIndex)

	if parentIdx == noIndex {
		return
	}
	p := a.at(parentIdx)
	childCount := 0
	if p.child[0] != noIndex {
		childCount++
	}
	if p.child[1] != noIndex {
		childCount++
	}
	if childCount == 1 && !p.nextHop.Valid() {
		grandParentIdx := p.parent
		pSlot := p.key.Bit(0)
		mergeNodes(a, h, grandParentIdx, pSlot, parentIdx)
	}
}
