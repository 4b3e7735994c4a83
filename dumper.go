// Copyright (c) 2026 The pctrie Authors
// SPDX-License-Identifier: MIT

package pctrie

import (
	"fmt"
	"io"
	"strings"
)

// dumpString is just a wrapper for dump.
func (t *Table) dumpString() string {
	w := new(strings.Builder)
	if err := t.dump(w); err != nil {
		panic(err)
	}
	return w.String()
}

// dump writes a human-readable listing of every installed prefix to w, one
// line per route: the v4 default (if any), every v4 route in depth-first
// order, then the same for v6. Useful during development and debugging,
// not part of the stable API surface.
func (t *Table) dump(w io.Writer) error {
	var err error
	mustf := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	if t.v4Head.defaultNextHop.Valid() {
		mustf("v4 0.0.0.0/0 -> %d\n", t.v4Head.defaultNextHop)
	}
	iterateEngine(t.v4Arena, t.v4Head, func(key v4key, depth int, hop NextHop) {
		mustf("v4 %s/%d -> %d\n", v4ToAddr(key), depth, hop)
	}, false)
	if err != nil {
		return err
	}

	if t.v6Head.defaultNextHop.Valid() {
		mustf("v6 ::/0 -> %d\n", t.v6Head.defaultNextHop)
	}
	iterateEngine(t.v6Arena, t.v6Head, func(key v6key, depth int, hop NextHop) {
		mustf("v6 %s/%d -> %d\n", v6ToAddr(key), depth, hop)
	}, false)
	return err
}
