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
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"software.sslmate.com/src/certnames/pattern"
)

// Pattern decides whether a hostname or IP address literal is one of a
// certificate's names.  It is safe for concurrent use.
type Pattern struct {
	tree   pattern.Anchored
	regexp *regexp.Regexp
}

// Compile builds a Pattern matching exactly the given names, where IP
// addresses also match their equivalent spellings and "*" labels match any
// single label.  An empty list yields a Pattern that matches nothing.
func Compile(names []string) *Pattern {
	valid := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		// regexp operates on runes, so names must be valid UTF-8
		valid = append(valid, strings.ToValidUTF8(name, "\uFFFD"))
	}
	classes := Classify(valid)

	var fragments []pattern.Node
	if len(classes.IPv6) > 0 {
		fragments = append(fragments, compileIPv6(classes.IPv6))
	}
	if len(classes.IPv4) > 0 {
		fragments = append(fragments, compileIPv4(classes.IPv4))
	}
	fragments = append(fragments, compileDomains(classes.Domains)...)

	tree := pattern.Anchored{Node: pattern.Alt(fragments...)}
	return &Pattern{
		tree:   tree,
		regexp: pattern.MustCompile(tree),
	}
}

func CompileNameSet(names NameSet) *Pattern {
	return Compile(names.Values())
}

// String returns the pattern in the syntax of the regexp package.
func (p *Pattern) String() string {
	return p.regexp.String()
}

func (p *Pattern) Tree() pattern.Node {
	return p.tree
}

func (p *Pattern) Regexp() *regexp.Regexp {
	return p.regexp
}

// Match reports whether name, taken verbatim, is covered.
func (p *Pattern) Match(name string) bool {
	return p.regexp.MatchString(name)
}

// normalizeHostname removes a trailing dot from hostnames and converts
// internationalized labels to Punycode.  IP address literals are returned
// unchanged.
func normalizeHostname(host string) (string, bool) {
	if _, ok := ParseIPv4Literal(host); ok {
		return host, true
	}
	if _, ok := ParseIPv6Literal(host); ok {
		return host, true
	}
	asciiHost, err := idna.ToASCII(strings.TrimSuffix(host, "."))
	if err != nil {
		return "", false
	}
	return asciiHost, true
}

// MatchHostname is like Match, but first removes a trailing dot from
// hostnames and converts internationalized labels to Punycode.  Letter case
// is left as is.
func (p *Pattern) MatchHostname(host string) bool {
	host, ok := normalizeHostname(host)
	return ok && p.Match(host)
}

// Covering returns the first name in set that covers host, normalizing host
// as MatchHostname does.  It agrees with CompileNameSet(set).MatchHostname.
func (set NameSet) Covering(host string) (Name, bool) {
	host, ok := normalizeHostname(host)
	if !ok {
		return Name{}, false
	}
	hostIPv4, hostIsIPv4 := ParseIPv4Literal(host)
	hostIPv6, hostIsIPv6 := ParseIPv6Literal(host)
	for _, name := range set {
		if addr, ok := ParseIPv4Literal(name.Value); ok {
			if hostIsIPv4 && addr == hostIPv4 {
				return name, true
			}
		} else if addr, ok := ParseIPv6Literal(name.Value); ok {
			if hostIsIPv6 && addr == hostIPv6 {
				return name, true
			}
		} else if MatchesDomainName(host, name.Value) {
			return name, true
		}
	}
	return Name{}, false
}
