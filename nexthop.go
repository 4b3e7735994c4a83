// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

// NextHop identifies a stored prefix's forwarding target. The zero value is
// NOT "none" — use NoNextHop / Valid to distinguish an installed route with
// identifier 0 from the absence of a route. Internally a sentinel of -1 is
// used, mirroring the reference implementation, but callers should use
// Valid rather than comparing against a magic number.
type NextHop int32

// NoNextHop is the sentinel value meaning "no route installed here".
const NoNextHop NextHop = -1

// Valid reports whether h identifies an installed route.
func (h NextHop) Valid() bool { return h >= 0 }
