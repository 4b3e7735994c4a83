// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableInsertLookupDelete(t *testing.T) {
	t.Parallel()
	tbl := New(16, 16)

	require.NoError(t, tbl.Insert(netip.MustParsePrefix("10.0.0.0/8"), 1))
	require.NoError(t, tbl.Insert(netip.MustParsePrefix("2001:db8::/32"), 2))

	hop, err := tbl.Lookup(netip.MustParseAddr("10.1.2.3"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, hop)

	hop, err = tbl.Lookup(netip.MustParseAddr("2001:db8::1"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, hop)

	require.NoError(t, tbl.Delete(netip.MustParsePrefix("10.0.0.0/8")))
	_, err = tbl.Lookup(netip.MustParseAddr("10.1.2.3"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTableCanonicalizationIsIdempotent(t *testing.T) {
	t.Parallel()
	t1 := New(4, 4)
	t2 := New(4, 4)

	require.NoError(t, t1.Insert(netip.MustParsePrefix("192.168.1.5/24"), 1))
	require.NoError(t, t2.Insert(netip.MustParsePrefix("192.168.1.0/24"), 1))

	assert.Equal(t, t1.dumpString(), t2.dumpString())
}

func TestTableAll4(t *testing.T) {
	t.Parallel()
	tbl := New(8, 8)
	require.NoError(t, tbl.Insert(netip.MustParsePrefix("10.0.0.0/8"), 1))
	require.NoError(t, tbl.Insert(netip.MustParsePrefix("10.1.0.0/16"), 2))

	seen := map[string]NextHop{}
	for pfx, hop := range tbl.All4() {
		seen[pfx.String()] = hop
	}
	assert.Equal(t, NextHop(1), seen["10.0.0.0/8"])
	assert.Equal(t, NextHop(2), seen["10.1.0.0/16"])
}

func TestTableAll4EarlyStop(t *testing.T) {
	t.Parallel()
	tbl := New(8, 8)
	require.NoError(t, tbl.Insert(netip.MustParsePrefix("10.0.0.0/8"), 1))
	require.NoError(t, tbl.Insert(netip.MustParsePrefix("10.1.0.0/16"), 2))

	count := 0
	for range tbl.All4() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestTableStatsAndReset(t *testing.T) {
	t.Parallel()
	tbl := New(8, 8)
	require.NoError(t, tbl.Insert(netip.MustParsePrefix("10.0.0.0/8"), 1))

	stats := tbl.Stats4()
	assert.Equal(t, 1, stats.TotalRoutes)
	assert.Equal(t, 1, stats.AddCount)

	tbl.Reset()
	stats = tbl.Stats4()
	assert.Equal(t, 0, stats.TotalRoutes)
	assert.Equal(t, 0, stats.AddCount)
}

func TestTableNoDefaultNotFound(t *testing.T) {
	t.Parallel()
	tbl := New(4, 4)
	_, err := tbl.Lookup(netip.MustParseAddr("192.0.2.1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddrConversionRoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"0.0.0.0", "255.255.255.255", "192.168.1.1", "10.0.0.1"} {
		a := netip.MustParseAddr(s)
		assert.Equal(t, a, v4ToAddr(addrToV4(a)))
	}
	for _, s := range []string{"::", "::1", "2001:db8::1", "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"} {
		a := netip.MustParseAddr(s)
		assert.Equal(t, a, v6ToAddr(addrToV6(a)))
	}
}

func TestFootprintGrowsWithRoutes(t *testing.T) {
	t.Parallel()
	assert.Less(t, Footprint4(4), Footprint4(40))
	assert.Less(t, Footprint4(4), Footprint6(4))
}
