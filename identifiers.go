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
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

type NameSource int

const (
	SourceSubjectCN NameSource = iota
	SourceDNSName
	SourceIPAddress
)

func (source NameSource) String() string {
	switch source {
	case SourceSubjectCN:
		return "subjectCN"
	case SourceDNSName:
		return "sanDnsName"
	case SourceIPAddress:
		return "sanIpAddress"
	}
	return fmt.Sprintf("NameSource(%d)", int(source))
}

// Name is an identity asserted by a certificate, along with where it came from.
type Name struct {
	Value  string
	Source NameSource
}

// NameSet is an ordered list of distinct, non-empty names.  Subject CNs come
// before SANs; within each, certificate order is preserved.
type NameSet []Name

func (set NameSet) Values() []string {
	values := make([]string, len(set))
	for i, name := range set {
		values[i] = name.Value
	}
	return values
}

type nameSetBuilder struct {
	names NameSet
	seen  map[string]struct{}
}

func (b *nameSetBuilder) add(value string, source NameSource) {
	if value == "" {
		return
	}
	if _, dup := b.seen[value]; dup {
		return
	}
	b.seen[value] = struct{}{}
	b.names = append(b.names, Name{Value: value, Source: source})
}

type DiagnosticKind int

const (
	// An entry which isn't a usable name and was skipped
	UnrecognizedNameEntry DiagnosticKind = iota
	InvalidDNSLabel
	PartialWildcard
	WildcardLeftOfPublicSuffix
)

func (kind DiagnosticKind) String() string {
	switch kind {
	case UnrecognizedNameEntry:
		return "unrecognized name entry"
	case InvalidDNSLabel:
		return "invalid DNS label"
	case PartialWildcard:
		return "partial wildcard"
	case WildcardLeftOfPublicSuffix:
		return "wildcard left of public suffix"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(kind))
}

// Diagnostic describes something odd about a certificate's names.  Diagnostics
// never prevent a pattern from being compiled.
type Diagnostic struct {
	Kind   DiagnosticKind
	Value  string // the offending name, or the hex encoding of undecodable bytes
	Detail string
}

func (diag Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", diag.Kind, diag.Detail, diag.Value)
}

func formatIPv4(value []byte) string {
	octets := make([]string, len(value))
	for i, b := range value {
		octets[i] = strconv.Itoa(int(b))
	}
	return strings.Join(octets, ".")
}

// formatIPv6 renders all eight groups as four hex digits, without compression.
func formatIPv6(value []byte) string {
	digits := hex.EncodeToString(value)
	groups := make([]string, 0, 8)
	for i := 0; i < len(digits); i += 4 {
		groups = append(groups, digits[i:i+4])
	}
	return strings.Join(groups, ":")
}

func formatIPAddressSAN(value []byte) (string, bool) {
	switch len(value) {
	case 4:
		return formatIPv4(value), true
	case 16:
		return formatIPv6(value), true
	}
	return "", false
}

// ExtractNames returns the subject CNs and subjectAltName DNS names and IP
// addresses of tbs.  Entries that can't be turned into a name are skipped
// and reported as diagnostics.  An error is returned only if the subject
// or a subjectAltName extension is malformed.
func ExtractNames(tbs *TBSCertificate) (NameSet, []Diagnostic, error) {
	builder := nameSetBuilder{seen: make(map[string]struct{})}
	var diags []Diagnostic

	subject, err := tbs.ParseSubject()
	if err != nil {
		return nil, nil, err
	}
	for _, cn := range subject.CommonNames() {
		value, kind, err := decodeASN1String(&cn)
		if err != nil {
			diags = append(diags, Diagnostic{
				Kind:   UnrecognizedNameEntry,
				Value:  hex.EncodeToString(cn.FullBytes),
				Detail: fmt.Sprintf("undecodable subject CN (%s): %s", kind, err),
			})
			continue
		}
		builder.add(value, SourceSubjectCN)
	}

	sans, err := tbs.ParseSubjectAltNames()
	if err != nil {
		return nil, nil, err
	}
	for _, san := range sans {
		switch san.Type {
		case GeneralNameDNS:
			// This should be an IA5String, but there are too many certs in
			// the wild which have UTF-8 or Latin-1 in their DNS SANs.
			value, err := utf8OrLatin1(san.Value)
			if err != nil {
				diags = append(diags, Diagnostic{
					Kind:   UnrecognizedNameEntry,
					Value:  hex.EncodeToString(san.Value),
					Detail: "undecodable DNS name: " + err.Error(),
				})
				continue
			}
			builder.add(value, SourceDNSName)
		case GeneralNameIPAddress:
			value, ok := formatIPAddressSAN(san.Value)
			if !ok {
				diags = append(diags, Diagnostic{
					Kind:   UnrecognizedNameEntry,
					Value:  hex.EncodeToString(san.Value),
					Detail: fmt.Sprintf("IP address SAN has bogus length %d", len(san.Value)),
				})
				continue
			}
			builder.add(value, SourceIPAddress)
		default:
			diags = append(diags, Diagnostic{
				Kind:   UnrecognizedNameEntry,
				Value:  hex.EncodeToString(san.Value),
				Detail: fmt.Sprintf("unsupported subjectAltName type %s (tag 0x%02x)", san.Type, uint8(san.Tag)),
			})
		}
	}

	return builder.names, diags, nil
}

// ExtractNamesFromBytes decodes a certificate and extracts its names.  Any
// failure to decode the certificate, including a malformed subjectAltName
// extension, is returned as a *DecodeError.
func ExtractNamesFromBytes(data []byte, encoding Encoding) (NameSet, []Diagnostic, error) {
	if encoding == EncodingAuto {
		encoding = DetectEncoding(data)
	}
	tbs, err := DecodeCertificate(data, encoding)
	if err != nil {
		return nil, nil, err
	}
	names, diags, err := ExtractNames(tbs)
	if err != nil {
		return nil, nil, &DecodeError{Encoding: encoding, Err: err}
	}
	return names, diags, nil
}
