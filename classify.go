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
	"net/netip"
	"strings"
)

// Classification partitions a list of names.  Every name is in exactly one
// of the three lists, in its original order.
type Classification struct {
	IPv4    []string
	IPv6    []string
	Domains []string
}

func Classify(names []string) Classification {
	var classes Classification
	for _, name := range names {
		if _, ok := ParseIPv4Literal(name); ok {
			classes.IPv4 = append(classes.IPv4, name)
		} else if _, ok := ParseIPv6Literal(name); ok {
			classes.IPv6 = append(classes.IPv6, name)
		} else {
			classes.Domains = append(classes.Domains, name)
		}
	}
	return classes
}

func isDecimalDigits(str string) bool {
	if str == "" {
		return false
	}
	for i := 0; i < len(str); i++ {
		if str[i] < '0' || str[i] > '9' {
			return false
		}
	}
	return true
}

// ParseIPv4Literal parses four dot-separated decimal octets.  Unlike
// netip.ParseAddr, any number of leading zeros is accepted.
func ParseIPv4Literal(str string) ([4]byte, bool) {
	var addr [4]byte
	fields := strings.Split(str, ".")
	if len(fields) != 4 {
		return addr, false
	}
	for i, field := range fields {
		if !isDecimalDigits(field) {
			return addr, false
		}
		field = strings.TrimLeft(field, "0")
		if len(field) > 3 {
			return addr, false
		}
		value := 0
		for j := 0; j < len(field); j++ {
			value = value*10 + int(field[j]-'0')
		}
		if value > 255 {
			return addr, false
		}
		addr[i] = byte(value)
	}
	return addr, true
}

// ParseIPv6Literal parses colon-separated hextets, optionally compressed
// with "::" and optionally enclosed in brackets.  Zones and embedded
// dotted-quad IPv4 tails are not accepted.
func ParseIPv6Literal(str string) ([16]byte, bool) {
	if len(str) >= 2 && str[0] == '[' && str[len(str)-1] == ']' {
		str = str[1 : len(str)-1]
	}
	if !strings.Contains(str, ":") || strings.ContainsAny(str, "%.[]") {
		return [16]byte{}, false
	}
	addr, err := netip.ParseAddr(str)
	if err != nil || !addr.Is6() {
		return [16]byte{}, false
	}
	return addr.As16(), true
}
