// Copyright (C) 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

package certnames

import (
	"encoding/binary"
	"strconv"

	"software.sslmate.com/src/certnames/pattern"
)

var (
	zero  = pattern.Lit("0")
	colon = pattern.Lit(":")
)

func decimalOctet(value byte) pattern.Node {
	if value == 0 {
		return pattern.Plus(zero)
	}
	return pattern.Seq(pattern.Star(zero), pattern.Lit(strconv.Itoa(int(value))))
}

// compileIPv4 matches the given addresses with any amount of zero padding in each octet.
func compileIPv4(addrs []string) pattern.Node {
	seen := make(map[[4]byte]bool)
	var alternatives []pattern.Node
	for _, str := range addrs {
		addr, ok := ParseIPv4Literal(str)
		if !ok || seen[addr] {
			continue
		}
		seen[addr] = true

		var parts []pattern.Node
		for i, octet := range addr {
			if i > 0 {
				parts = append(parts, pattern.Lit("."))
			}
			parts = append(parts, decimalOctet(octet))
		}
		alternatives = append(alternatives, pattern.Seq(parts...))
	}
	return pattern.Alt(alternatives...)
}

func hexDigit(digit byte) pattern.Node {
	if digit >= 'a' && digit <= 'f' {
		return pattern.AnyOf(rune(digit), rune(digit-'a'+'A'))
	}
	return pattern.Lit(string(digit))
}

// hextet matches value written with one to four hex digits.
func hextet(value uint16) pattern.Node {
	if value == 0 {
		return pattern.Times(zero, 1, 4)
	}
	digits := strconv.FormatUint(uint64(value), 16)
	var parts []pattern.Node
	if pad := 4 - len(digits); pad > 0 {
		parts = append(parts, pattern.Times(zero, 0, pad))
	}
	for i := 0; i < len(digits); i++ {
		parts = append(parts, hexDigit(digits[i]))
	}
	return pattern.Seq(parts...)
}

func hextets(groups []uint16) []pattern.Node {
	var parts []pattern.Node
	for i, group := range groups {
		if i > 0 {
			parts = append(parts, colon)
		}
		parts = append(parts, hextet(group))
	}
	return parts
}

// ipv6Forms returns the uncompressed form of groups, plus one form for each
// contiguous run of zero groups that can be replaced with "::".
func ipv6Forms(groups [8]uint16) []pattern.Node {
	forms := []pattern.Node{pattern.Seq(hextets(groups[:])...)}
	for start := 0; start < len(groups); start++ {
		for end := start; end < len(groups) && groups[end] == 0; end++ {
			parts := hextets(groups[:start])
			parts = append(parts, pattern.Lit("::"))
			parts = append(parts, hextets(groups[end+1:])...)
			forms = append(forms, pattern.Seq(parts...))
		}
	}
	return forms
}

// compileIPv6 matches the given addresses in any textual form that denotes
// the same value, with or without enclosing brackets.
func compileIPv6(addrs []string) pattern.Node {
	seen := make(map[[16]byte]bool)
	var alternatives []pattern.Node
	for _, str := range addrs {
		addr, ok := ParseIPv6Literal(str)
		if !ok || seen[addr] {
			continue
		}
		seen[addr] = true

		var groups [8]uint16
		for i := range groups {
			groups[i] = binary.BigEndian.Uint16(addr[2*i:])
		}
		literal := pattern.Alt(ipv6Forms(groups)...)
		alternatives = append(alternatives,
			pattern.Seq(pattern.Lit("["), literal, pattern.Lit("]")),
			literal,
		)
	}
	return pattern.Alt(alternatives...)
}
