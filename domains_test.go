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
	"testing"

	"github.com/google/go-cmp/cmp"

	"software.sslmate.com/src/certnames/pattern"
)

func TestGroupDomains(t *testing.T) {
	tests := []struct {
		domains []string
		groups  []suffixGroup
	}{
		{
			[]string{"example.com", "*.example.com", "my.example.com"},
			[]suffixGroup{
				{suffix: reversedLabels{"com", "example"}, prefixes: [][]string{{"*"}, {"my"}}, hasExactMatch: true},
			},
		},
		{
			[]string{"a.example.com", "b.example.com", "example.org", "www.example.org"},
			[]suffixGroup{
				{suffix: reversedLabels{"com", "example"}, prefixes: [][]string{{"a"}, {"b"}}},
				{suffix: reversedLabels{"org", "example"}, prefixes: [][]string{{"www"}}, hasExactMatch: true},
			},
		},
		{
			[]string{"www.example.com", "example.com", "www.example.com"},
			[]suffixGroup{
				{suffix: reversedLabels{"com", "example"}, prefixes: [][]string{{"www"}}, hasExactMatch: true},
			},
		},
		{
			[]string{"c.d", "a.b"},
			[]suffixGroup{
				{suffix: reversedLabels{"b", "a"}, hasExactMatch: true},
				{suffix: reversedLabels{"d", "c"}, hasExactMatch: true},
			},
		},
		{
			[]string{"*.example.com", "foo.bar.example.com", "x.bar.example.com"},
			[]suffixGroup{
				{suffix: reversedLabels{"com", "example", "bar"}, prefixes: [][]string{{"foo"}, {"x"}}},
				{suffix: reversedLabels{"com", "example", "*"}, hasExactMatch: true},
			},
		},
		{nil, nil},
	}
	for i, test := range tests {
		groups := groupDomains(test.domains)
		if diff := cmp.Diff(test.groups, groups, cmp.AllowUnexported(suffixGroup{})); diff != "" {
			t.Errorf("#%d: groupDomains(%q) mismatch (-want +got):\n%s", i, test.domains, diff)
		}
	}
}

func TestGroupDomainsCoversEveryName(t *testing.T) {
	domains := []string{"a.b.c.example.com", "*.*.example.com", "x.*.example.com", "example.net", "com", "foo.example.com"}
	groups := groupDomains(domains)
	count := 0
	for _, group := range groups {
		count += len(group.prefixes)
		if group.hasExactMatch {
			count++
		}
	}
	if count != len(domains) {
		t.Errorf("groups account for %d names, want %d", count, len(domains))
	}
}

func TestCompileDomainsText(t *testing.T) {
	tests := []struct {
		domains []string
		text    string
	}{
		{[]string{"example.com", "*.example.com", "my.example.com"}, `(?:(?:[^.]+|my)\.)?example\.com`},
		{[]string{"com"}, `com`},
		{[]string{"*.example.com", "foo.bar.example.com", "x.bar.example.com"}, `(?:foo|x)\.bar\.example\.com|[^.]+\.example\.com`},
		{[]string{"a.example.com", "b.example.com", "example.org", "www.example.org"}, `(?:a|b)\.example\.com|(?:www\.)?example\.org`},
	}
	for i, test := range tests {
		text := pattern.String(pattern.Alt(compileDomains(test.domains)...))
		if text != test.text {
			t.Errorf("#%d: compileDomains(%q) = %s, want %s", i, test.domains, text, test.text)
		}
	}
}

func TestMatchesDomainName(t *testing.T) {
	tests := []struct {
		host string
		name string
		out  bool
	}{
		{"", "", true},
		{"example.com", "example.com", true},
		{"example.org", "example.com", false},
		{"example.com", "", false},
		{"", "example.com", false},
		{"", "*.example.com", false},
		{"example.com", "*.example.com", false},
		{".example.com", "*.example.com", false},
		{"www.example.com", "*.example.com", true},
		{"a.b.example.com", "*.example.com", false},
		{"a.b.example.com", "*.*.example.com", true},
		{"", "*", false},
		{"a", "*", true},
		{"www-example.com", "*-example.com", false},
		{"*-example.com", "*-example.com", true},
		{"examplecom", "example*", false},
		{"www.example.com", "www.*.com", true},
	}
	for i, test := range tests {
		if out := MatchesDomainName(test.host, test.name); out != test.out {
			t.Errorf("#%d: MatchesDomainName(%q, %q) = %v, want %v", i, test.host, test.name, out, test.out)
		}
	}
}
