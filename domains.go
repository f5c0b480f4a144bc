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
	"slices"
	"strings"

	"software.sslmate.com/src/certnames/pattern"
)

// A wildcard label matches exactly one non-empty label.
var wildcardLabel = pattern.Plus(pattern.NoneOf('.'))

// reversedLabels holds a domain's labels from right to left, TLD first.
type reversedLabels []string

func reverseLabels(domain string) reversedLabels {
	labels := strings.Split(domain, ".")
	slices.Reverse(labels)
	return labels
}

func (labels reversedLabels) hasPrefix(prefix reversedLabels) bool {
	return len(labels) >= len(prefix) && slices.Equal(labels[:len(prefix)], prefix)
}

// key is unambiguous because labels never contain dots.
func (labels reversedLabels) key() string {
	return strings.Join(labels, ".")
}

// suffixWeights accumulates a weight per candidate suffix, remembering the
// order in which suffixes were first seen.
type suffixWeights struct {
	index    map[string]int
	suffixes []reversedLabels
	weights  []int
}

func newSuffixWeights() *suffixWeights {
	return &suffixWeights{index: make(map[string]int)}
}

func (table *suffixWeights) add(suffix reversedLabels, weight int) {
	key := suffix.key()
	if i, ok := table.index[key]; ok {
		table.weights[i] += weight
		return
	}
	table.index[key] = len(table.suffixes)
	table.suffixes = append(table.suffixes, suffix)
	table.weights = append(table.weights, weight)
}

// heaviest returns the suffix with the greatest weight; ties go to the suffix seen first.
func (table *suffixWeights) heaviest() reversedLabels {
	best := 0
	for i, weight := range table.weights {
		if weight > table.weights[best] {
			best = i
		}
	}
	return table.suffixes[best]
}

type suffixGroup struct {
	suffix        reversedLabels
	prefixes      [][]string // left over labels of each non-exact member, left to right
	hasExactMatch bool
}

// groupDomains repeatedly picks the suffix shared most heavily by the
// remaining domains and groups every domain ending in it.  A name's suffix
// of i labels is worth i-1, so sharing just a TLD is worth nothing.
func groupDomains(domains []string) []suffixGroup {
	working := make([]reversedLabels, 0, len(domains))
	seen := make(map[string]bool)
	for _, domain := range domains {
		if seen[domain] {
			continue
		}
		seen[domain] = true
		working = append(working, reverseLabels(domain))
	}

	var groups []suffixGroup
	for len(working) > 0 {
		slices.SortFunc(working, func(a, b reversedLabels) int { return slices.Compare(a, b) })

		weights := newSuffixWeights()
		for _, labels := range working {
			for i := 1; i <= len(labels); i++ {
				weights.add(labels[:i], i-1)
			}
		}
		suffix := weights.heaviest()

		group := suffixGroup{suffix: suffix}
		var remaining []reversedLabels
		for _, labels := range working {
			if !labels.hasPrefix(suffix) {
				remaining = append(remaining, labels)
				continue
			}
			leftover := slices.Clone(labels[len(suffix):])
			if len(leftover) == 0 {
				group.hasExactMatch = true
				continue
			}
			slices.Reverse(leftover)
			group.prefixes = append(group.prefixes, leftover)
		}
		groups = append(groups, group)
		working = remaining
	}
	return groups
}

// labelsNode matches labels (given left to right) joined by dots, with "*"
// labels standing for any single label.
func labelsNode(labels []string) pattern.Node {
	var parts []pattern.Node
	for i, label := range labels {
		if i > 0 {
			parts = append(parts, pattern.Lit("."))
		}
		if label == "*" {
			parts = append(parts, wildcardLabel)
		} else {
			parts = append(parts, pattern.Lit(label))
		}
	}
	return pattern.Seq(parts...)
}

// MatchesDomainName reports whether host is covered by the single domain
// name, where a "*" label stands for any one non-empty label and any other
// label must be equal.
func MatchesDomainName(host string, name string) bool {
	hostLabels := strings.Split(host, ".")
	nameLabels := strings.Split(name, ".")
	if len(hostLabels) != len(nameLabels) {
		return false
	}
	for i, label := range nameLabels {
		if label == "*" {
			if hostLabels[i] == "" {
				return false
			}
		} else if label != hostLabels[i] {
			return false
		}
	}
	return true
}

func (group *suffixGroup) node() pattern.Node {
	suffix := slices.Clone(group.suffix)
	slices.Reverse(suffix)
	suffixNode := labelsNode(suffix)
	if len(group.prefixes) == 0 {
		return suffixNode
	}

	alternatives := make([]pattern.Node, len(group.prefixes))
	for i, prefix := range group.prefixes {
		alternatives[i] = labelsNode(prefix)
	}
	lead := pattern.Seq(pattern.Alt(alternatives...), pattern.Lit("."))
	if group.hasExactMatch {
		lead = pattern.Opt(lead)
	}
	return pattern.Seq(lead, suffixNode)
}

// compileDomains returns one alternative per suffix group.
func compileDomains(domains []string) []pattern.Node {
	groups := groupDomains(domains)
	nodes := make([]pattern.Node, len(groups))
	for i := range groups {
		nodes[i] = groups[i].node()
	}
	return nodes
}
