// Copyright (C) 2016, 2026 Opsmate, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla
// Public License, v. 2.0. If a copy of the MPL was not distributed
// with this file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// This software is distributed WITHOUT A WARRANTY OF ANY KIND.
// See the Mozilla Public License for details.

package certnames

import (
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Validate a DNS label.  We are less strict than we could be, because
// the purpose is to point out names that can't be hostnames at all.  In
// particular, we allow '_' (since it's quite common in hostnames despite
// being prohibited), '*' (since it's used to represent wildcards), and '?'
// (since it's used in CT to represent redacted labels).
func isValidDNSLabelChar(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_' ||
		ch == '*' || ch == '?'
}

func isValidDNSLabel(label string) bool {
	if label == "" {
		return false
	}
	for _, ch := range label {
		if !isValidDNSLabelChar(ch) {
			return false
		}
	}
	return true
}

// CheckNames reports domain names that are unlikely to work the way the
// certificate's issuer intended.  IP addresses are not checked.
func CheckNames(names []string) []Diagnostic {
	var diags []Diagnostic
	for _, name := range Classify(names).Domains {
		labels := strings.Split(name, ".")

		for _, label := range labels {
			if !isValidDNSLabel(label) {
				diags = append(diags, Diagnostic{
					Kind:   InvalidDNSLabel,
					Value:  name,
					Detail: "label " + strconv.Quote(label) + " is not a valid DNS label",
				})
				break
			}
		}

		for _, label := range labels {
			if label != "*" && strings.Contains(label, "*") {
				diags = append(diags, Diagnostic{
					Kind:   PartialWildcard,
					Value:  name,
					Detail: "label " + strconv.Quote(label) + " will only match a literal asterisk",
				})
				break
			}
		}

		if len(labels) > 1 && labels[0] == "*" {
			parent := strings.ToLower(strings.Join(labels[1:], "."))
			if suffix, _ := publicsuffix.PublicSuffix(parent); suffix == parent {
				diags = append(diags, Diagnostic{
					Kind:   WildcardLeftOfPublicSuffix,
					Value:  name,
					Detail: "wildcard covers every registrable domain under " + parent,
				})
			}
		}
	}
	return diags
}
