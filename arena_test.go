// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import (
	"testing"

	"github.com/netradix/pctrie/internal/bitkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaFootprint(t *testing.T) {
	t.Parallel()
	assert.Greater(t, footprint[bitkey.V4](1), 0)
	assert.Greater(t, footprint[bitkey.V6](100), footprint[bitkey.V4](100))
}

func TestArenaConservation(t *testing.T) {
	t.Parallel()
	const maxRoutes = 8
	a := newArena[bitkey.V4](maxRoutes)
	n := nodeCount(maxRoutes)
	require.Equal(t, n, a.cap())
	assert.Equal(t, n, a.poolFreeCount())
	assert.Equal(t, 0, a.poolCount())

	idxs, err := a.acquireBulk(3)
	require.NoError(t, err)
	assert.Len(t, idxs, 3)
	assert.Equal(t, 3, a.poolCount())
	assert.Equal(t, n-3, a.poolFreeCount())
	assert.Equal(t, n, a.poolCount()+a.poolFreeCount())

	for _, idx := range idxs {
		a.release(idx)
	}
	assert.Equal(t, 0, a.poolCount())
	assert.Equal(t, n, a.poolFreeCount())
}

func TestArenaAcquireBulkAllOrNothing(t *testing.T) {
	t.Parallel()
	a := newArena[bitkey.V4](2) // N = 3
	_, err := a.acquireBulk(3)
	require.NoError(t, err)

	_, err = a.acquireBulk(1)
	require.ErrorIs(t, err, ErrExhausted)
	// No partial acquisition: all nodes still unavailable, none leaked.
	assert.Equal(t, 0, a.poolFreeCount())
}

func TestArenaReleaseIntoFullQueuePanics(t *testing.T) {
	t.Parallel()
	a := newArena[bitkey.V4](1) // N = 1
	idxs, err := a.acquireBulk(1)
	require.NoError(t, err)
	a.release(idxs[0])

	assert.Panics(t, func() {
		a.release(idxs[0])
	})
}

func TestArenaLiveNodesBitset(t *testing.T) {
	t.Parallel()
	a := newArena[bitkey.V4](4)
	idxs, err := a.acquireBulk(2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), a.liveNodes().Count())
	a.release(idxs[0])
	assert.Equal(t, uint(1), a.liveNodes().Count())
}
