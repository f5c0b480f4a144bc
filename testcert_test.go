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
	"encoding/asn1"
	"encoding/pem"
	"os"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Builders for minimal certificates.  Only the parts that ExtractNames looks
// at are meaningful; the rest is well-formed filler.

type testAttribute struct {
	oid   asn1.ObjectIdentifier
	tag   cryptobyte_asn1.Tag
	value []byte
}

func cnAttribute(tag cryptobyte_asn1.Tag, value []byte) testAttribute {
	return testAttribute{oid: oidCommonName, tag: tag, value: value}
}

func utf8CN(value string) testAttribute {
	return cnAttribute(cryptobyte_asn1.UTF8String, []byte(value))
}

type testGeneralName struct {
	tag   cryptobyte_asn1.Tag
	value []byte
}

func dnsSAN(name string) testGeneralName {
	return testGeneralName{cryptobyte_asn1.Tag(2).ContextSpecific(), []byte(name)}
}

func ipSAN(addr ...byte) testGeneralName {
	return testGeneralName{cryptobyte_asn1.Tag(7).ContextSpecific(), addr}
}

func uriSAN(uri string) testGeneralName {
	return testGeneralName{cryptobyte_asn1.Tag(6).ContextSpecific(), []byte(uri)}
}

func sanExtensionValue(names ...testGeneralName) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, name := range names {
			b.AddASN1(name.tag, func(b *cryptobyte.Builder) {
				b.AddBytes(name.value)
			})
		}
	})
	return b.BytesOrPanic()
}

type testExtension struct {
	oid   asn1.ObjectIdentifier
	value []byte
}

func sanExtension(names ...testGeneralName) testExtension {
	return testExtension{oid: oidExtensionSubjectAltName, value: sanExtensionValue(names...)}
}

func addName(b *cryptobyte.Builder, rdns [][]testAttribute) {
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, rdn := range rdns {
			b.AddASN1(cryptobyte_asn1.SET, func(b *cryptobyte.Builder) {
				for _, attr := range rdn {
					b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(attr.oid)
						b.AddASN1(attr.tag, func(b *cryptobyte.Builder) {
							b.AddBytes(attr.value)
						})
					})
				}
			})
		}
	})
}

var (
	oidSHA256WithRSA = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	oidRSAEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	oidOrganization  = asn1.ObjectIdentifier{2, 5, 4, 10}
)

func addAlgorithm(b *cryptobyte.Builder, oid asn1.ObjectIdentifier) {
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oid)
		b.AddASN1NULL()
	})
}

func makeTestCert(subject [][]testAttribute, extensions ...testExtension) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1(cryptobyte_asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddASN1Int64(2)
			})
			b.AddASN1Int64(0x1234)
			addAlgorithm(b, oidSHA256WithRSA)
			addName(b, [][]testAttribute{{{oidOrganization, cryptobyte_asn1.PrintableString, []byte("Test CA")}}})
			b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1(cryptobyte_asn1.UTCTime, func(b *cryptobyte.Builder) { b.AddBytes([]byte("260101000000Z")) })
				b.AddASN1(cryptobyte_asn1.UTCTime, func(b *cryptobyte.Builder) { b.AddBytes([]byte("270101000000Z")) })
			})
			addName(b, subject)
			b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				addAlgorithm(b, oidRSAEncryption)
				b.AddASN1BitString([]byte{0x30, 0x00})
			})
			if len(extensions) > 0 {
				b.AddASN1(cryptobyte_asn1.Tag(3).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
					b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						for _, ext := range extensions {
							b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
								b.AddASN1ObjectIdentifier(ext.oid)
								b.AddASN1OctetString(ext.value)
							})
						}
					})
				})
			}
		})
		addAlgorithm(b, oidSHA256WithRSA)
		b.AddASN1BitString([]byte{0x00})
	})
	return b.BytesOrPanic()
}

func toPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func readTestdata(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("error reading test data: %v", err)
	}
	return data
}
