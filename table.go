// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

// Package pctrie implements a path-compressed binary radix (Patricia) trie
// for longest-prefix-match lookups over IPv4 and IPv6 prefixes, backed by a
// fixed-capacity node arena per address family. It maps network prefixes to
// integer next-hop identifiers and answers, for a queried address, whether
// any installed prefix covers it and the next-hop of the most specific
// (longest) match.
//
// The table is not safe for concurrent mutation; see the concurrency note
// on Table.
package pctrie

import (
	"encoding/binary"
	"iter"
	"net/netip"

	"github.com/netradix/pctrie/internal/bitkey"
)

type v4key = bitkey.V4
type v6key = bitkey.V6

// Table is a longest-prefix-match routing table holding independent IPv4
// and IPv6 families, each backed by its own fixed-capacity node arena.
//
// Table is safe for concurrent readers but not for concurrent readers and
// writers, nor for concurrent writers: the core is single-threaded by
// design (mutating operations walk and rewrite shared node state with no
// internal locking). Callers needing concurrent mutation must provide an
// external lock, e.g. a sync.RWMutex around Insert/Delete/Reset.
type Table struct {
	_ noCopy

	v4Arena *arena[v4key]
	v4Head  *head[v4key]

	v6Arena *arena[v6key]
	v6Head  *head[v6key]
}

// noCopy helps `go vet` flag accidental copies of a Table, whose node
// arenas must not be duplicated.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New returns a Table whose v4 and v6 families can each hold up to
// maxRoutesV4 / maxRoutesV6 installed prefixes.
func New(maxRoutesV4, maxRoutesV6 int) *Table {
	return &Table{
		v4Arena: newArena[v4key](maxRoutesV4),
		v4Head:  newHead[v4key](),
		v6Arena: newArena[v6key](maxRoutesV6),
		v6Head:  newHead[v6key](),
	}
}

// Footprint4 / Footprint6 report the byte size a caller-managed buffer
// would need to back a family sized for maxRoutes. This implementation
// allocates its own storage rather than carving a caller buffer; the
// functions remain as a sizing oracle for callers who want to pre-reserve
// memory.
func Footprint4(maxRoutes int) int { return footprint[v4key](maxRoutes) }
func Footprint6(maxRoutes int) int { return footprint[v6key](maxRoutes) }

// Reset clears both families' heads: default routes are removed, the root
// slots are emptied and the counters go back to zero. No nodes are
// released: nodes that were in use stay allocated in their arena, and
// Table has no method that returns them to the free list.
func (t *Table) Reset() {
	t.v4Head.reset()
	t.v6Head.reset()
}

// Insert installs prefix with the given next-hop, overwriting any route
// already installed at that exact prefix. It returns ErrArgument if hop is
// not valid, or ErrExhausted if the family's arena cannot supply the nodes
// the insert requires (the table is left unchanged on error).
func (t *Table) Insert(prefix netip.Prefix, hop NextHop) error {
	prefix = prefix.Masked()
	if prefix.Addr().Is4() {
		return addEngine(t.v4Arena, t.v4Head, addrToV4(prefix.Addr()), prefix.Bits(), hop)
	}
	return addEngine(t.v6Arena, t.v6Head, addrToV6(prefix.Addr()), prefix.Bits(), hop)
}

// Delete removes prefix's installed route. It returns ErrNotFound if no
// route is installed at exactly that prefix.
func (t *Table) Delete(prefix netip.Prefix) error {
	prefix = prefix.Masked()
	if prefix.Addr().Is4() {
		return delEngine(t.v4Arena, t.v4Head, addrToV4(prefix.Addr()), prefix.Bits())
	}
	return delEngine(t.v6Arena, t.v6Head, addrToV6(prefix.Addr()), prefix.Bits())
}

// Lookup returns the next-hop of the longest installed prefix covering
// addr, or ErrNotFound if none (including no default route) covers it.
func (t *Table) Lookup(addr netip.Addr) (NextHop, error) {
	if addr.Is4() || addr.Is4In6() {
		return lookupEngine(t.v4Arena, t.v4Head, addrToV4(addr.Unmap()))
	}
	return lookupEngine(t.v6Arena, t.v6Head, addrToV6(addr))
}

// Check audits the trie for compression-invariant violations (a
// route-less node with fewer than two children). A correct sequence of
// operations never produces any; this is a diagnostic aid, not part of the
// hot path.
func (t *Table) Check() []Violation {
	out := checkEngine(t.v4Arena, t.v4Head)
	out = append(out, checkEngine(t.v6Arena, t.v6Head)...)
	return out
}

// Stats reports per-family bookkeeping counters.
type Stats struct {
	TotalNodes  int
	TotalRoutes int
	AddCount    int
	DelCount    int
	PoolCount   int
	PoolFree    int
}

// Stats4 / Stats6 report the current bookkeeping counters for each family.
func (t *Table) Stats4() Stats { return statsOf(t.v4Arena, t.v4Head) }
func (t *Table) Stats6() Stats { return statsOf(t.v6Arena, t.v6Head) }

func statsOf[K bitkey.Key[K]](a *arena[K], h *head[K]) Stats {
	return Stats{
		TotalNodes:  h.totalNodes,
		TotalRoutes: h.totalRoutes,
		AddCount:    h.addCount,
		DelCount:    h.delCount,
		PoolCount:   a.poolCount(),
		PoolFree:    a.poolFreeCount(),
	}
}

// All4 / All6 return a range-over-func iterator over every installed
// prefix (excluding the default route) for one family, in depth-first
// order.
func (t *Table) All4() iter.Seq2[netip.Prefix, NextHop] {
	return func(yield func(netip.Prefix, NextHop) bool) {
		rangeFamily(t.v4Arena, t.v4Head, v4ToAddr, yield)
	}
}

func (t *Table) All6() iter.Seq2[netip.Prefix, NextHop] {
	return func(yield func(netip.Prefix, NextHop) bool) {
		rangeFamily(t.v6Arena, t.v6Head, v6ToAddr, yield)
	}
}

func rangeFamily[K bitkey.Key[K]](a *arena[K], h *head[K], toAddr func(K) netip.Addr, yield func(netip.Prefix, NextHop) bool) {
	stop := false
	iterateEngine(a, h, func(key K, depth int, hop NextHop) {
		if stop {
			return
		}
		pfx := netip.PrefixFrom(toAddr(key), depth)
		if !yield(pfx, hop) {
			stop = true
		}
	}, false)
}

func addrToV4(a netip.Addr) v4key {
	b := a.As4()
	return v4key(binary.BigEndian.Uint32(b[:]))
}

func v4ToAddr(k v4key) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(k))
	return netip.AddrFrom4(b)
}

func addrToV6(a netip.Addr) v6key {
	b := a.As16()
	return v6key{
		Hi: binary.BigEndian.Uint64(b[0:8]),
		Lo: binary.BigEndian.Uint64(b[8:16]),
	}
}

func v6ToAddr(k v6key) netip.Addr {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], k.Hi)
	binary.BigEndian.PutUint64(b[8:16], k.Lo)
	return netip.AddrFrom16(b)
}
