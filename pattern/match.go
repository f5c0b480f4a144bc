// Copyright (C) 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

package pattern

import (
	"strings"
	"unicode/utf8"
)

// positions is a set of byte offsets into the input.
type positions map[int]struct{}

func (set positions) add(pos int) { set[pos] = struct{}{} }

func (set positions) has(pos int) bool {
	_, ok := set[pos]
	return ok
}

// Matches reports whether node matches all of s.  It simulates the tree
// directly, tracking every offset at which a partial match can end.
func Matches(node Node, s string) bool {
	return node.match(s, positions{0: {}}).has(len(s))
}

func (lit Literal) match(s string, from positions) positions {
	to := make(positions)
	for pos := range from {
		if strings.HasPrefix(s[pos:], string(lit)) {
			to.add(pos + len(lit))
		}
	}
	return to
}

func (class Class) contains(r rune) bool {
	for _, rng := range class.Ranges {
		if rng.Lo <= r && r <= rng.Hi {
			return true
		}
	}
	return false
}

func (class Class) match(s string, from positions) positions {
	to := make(positions)
	for pos := range from {
		if pos >= len(s) {
			continue
		}
		r, size := utf8.DecodeRuneInString(s[pos:])
		if class.contains(r) != class.Negated {
			to.add(pos + size)
		}
	}
	return to
}

func (seq Sequence) match(s string, from positions) positions {
	for _, node := range seq {
		if len(from) == 0 {
			break
		}
		from = node.match(s, from)
	}
	return from
}

func (alt Alternation) match(s string, from positions) positions {
	to := make(positions)
	for _, node := range alt {
		for pos := range node.match(s, from) {
			to.add(pos)
		}
	}
	return to
}

func (rep Repeat) match(s string, from positions) positions {
	current := from
	for i := 0; i < rep.Min; i++ {
		current = rep.Node.match(s, current)
		if len(current) == 0 {
			return current
		}
	}

	result := make(positions, len(current))
	for pos := range current {
		result.add(pos)
	}
	// Offsets reached in fewer iterations have at least as much budget left,
	// so only newly reached offsets need to be expanded.
	frontier := current
	for i := rep.Min; rep.Max < 0 || i < rep.Max; i++ {
		added := make(positions)
		for pos := range rep.Node.match(s, frontier) {
			if !result.has(pos) {
				result.add(pos)
				added.add(pos)
			}
		}
		if len(added) == 0 {
			break
		}
		frontier = added
	}
	return result
}

func (Never) match(s string, from positions) positions {
	return positions{}
}

func (anchored Anchored) match(s string, from positions) positions {
	if !from.has(0) {
		return positions{}
	}
	to := make(positions)
	if anchored.Node.match(s, positions{0: {}}).has(len(s)) {
		to.add(len(s))
	}
	return to
}
