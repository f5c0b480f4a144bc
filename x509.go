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
	"bytes"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	oidExtensionSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidCommonName              = asn1.ObjectIdentifier{2, 5, 4, 3}
)

type Encoding int

const (
	EncodingAuto Encoding = iota
	EncodingPEM
	EncodingDER
)

func (encoding Encoding) String() string {
	switch encoding {
	case EncodingAuto:
		return "auto"
	case EncodingPEM:
		return "pem"
	case EncodingDER:
		return "der"
	}
	return fmt.Sprintf("Encoding(%d)", int(encoding))
}

func ParseEncoding(str string) (Encoding, error) {
	switch str {
	case "auto", "":
		return EncodingAuto, nil
	case "pem", "PEM":
		return EncodingPEM, nil
	case "der", "DER":
		return EncodingDER, nil
	}
	return EncodingAuto, fmt.Errorf("unknown encoding %q (must be auto, pem, or der)", str)
}

const pemWhitespace = " \t\r\n\v\f"

// DetectEncoding returns EncodingPEM if data starts, after optional
// whitespace, with a "-----BEGIN" line, and EncodingDER otherwise.
func DetectEncoding(data []byte) Encoding {
	data = bytes.TrimLeft(data, pemWhitespace)
	if !bytes.HasPrefix(data, []byte("-----")) {
		return EncodingDER
	}
	data = bytes.TrimLeft(data[len("-----"):], pemWhitespace)
	if bytes.HasPrefix(data, []byte("BEGIN")) {
		return EncodingPEM
	}
	return EncodingDER
}

// DecodeError is returned when a buffer is not a certificate in the
// requested (or detected) encoding.
type DecodeError struct {
	Encoding Encoding
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error decoding %s certificate: %s", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Extension struct {
	Id       asn1.ObjectIdentifier
	Critical bool `asn1:"optional"`
	Value    []byte
}

type RDNSequence []RelativeDistinguishedNameSET
type RelativeDistinguishedNameSET []AttributeTypeAndValue
type AttributeTypeAndValue struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue
}

type TBSCertificate struct {
	Raw asn1.RawContent

	Version            int `asn1:"optional,explicit,default:1,tag:0"`
	SerialNumber       asn1.RawValue
	SignatureAlgorithm asn1.RawValue
	Issuer             asn1.RawValue
	Validity           asn1.RawValue
	Subject            asn1.RawValue
	PublicKey          asn1.RawValue
	UniqueId           asn1.BitString `asn1:"optional,tag:1"`
	SubjectUniqueId    asn1.BitString `asn1:"optional,tag:2"`
	Extensions         []Extension    `asn1:"optional,explicit,tag:3"`
}

type Certificate struct {
	Raw asn1.RawContent

	TBSCertificate     asn1.RawValue
	SignatureAlgorithm asn1.RawValue
	SignatureValue     asn1.RawValue
}

// DecodeCertificate unwraps data according to encoding and parses the
// certificate's TBSCertificate and subject.  All failures are *DecodeError.
func DecodeCertificate(data []byte, encoding Encoding) (*TBSCertificate, error) {
	if encoding == EncodingAuto {
		encoding = DetectEncoding(data)
	}
	tbs, err := decodeCertificate(data, encoding)
	if err != nil {
		return nil, &DecodeError{Encoding: encoding, Err: err}
	}
	return tbs, nil
}

func decodeCertificate(data []byte, encoding Encoding) (*TBSCertificate, error) {
	certBytes := data
	if encoding == EncodingPEM {
		var err error
		if certBytes, err = decodePEM(data); err != nil {
			return nil, err
		}
	}
	cert, err := ParseCertificate(certBytes)
	if err != nil {
		return nil, err
	}
	tbs, err := cert.ParseTBSCertificate()
	if err != nil {
		return nil, err
	}
	if _, err := tbs.ParseSubject(); err != nil {
		return nil, err
	}
	return tbs, nil
}

func decodePEM(data []byte) ([]byte, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM data found")
	}
	if block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("PEM block type is %q, expected CERTIFICATE", block.Type)
	}
	return block.Bytes, nil
}

func ParseCertificate(certBytes []byte) (*Certificate, error) {
	var cert Certificate
	if rest, err := asn1.Unmarshal(certBytes, &cert); err != nil {
		return nil, errors.New("failed to parse certificate: " + err.Error())
	} else if len(rest) > 0 {
		return nil, fmt.Errorf("trailing data after certificate: %v", rest)
	}
	return &cert, nil
}

func (cert *Certificate) GetRawTBSCertificate() []byte {
	return cert.TBSCertificate.FullBytes
}

func (cert *Certificate) ParseTBSCertificate() (*TBSCertificate, error) {
	return ParseTBSCertificate(cert.GetRawTBSCertificate())
}

func ParseTBSCertificate(tbsBytes []byte) (*TBSCertificate, error) {
	var tbs TBSCertificate
	if rest, err := asn1.Unmarshal(tbsBytes, &tbs); err != nil {
		return nil, errors.New("failed to parse TBS: " + err.Error())
	} else if len(rest) > 0 {
		return nil, fmt.Errorf("trailing data after TBS: %v", rest)
	}
	return &tbs, nil
}

func (tbs *TBSCertificate) GetRawSubject() []byte {
	return tbs.Subject.FullBytes
}

func (tbs *TBSCertificate) ParseSubject() (RDNSequence, error) {
	var subject RDNSequence
	if rest, err := asn1.Unmarshal(tbs.GetRawSubject(), &subject); err != nil {
		return nil, errors.New("failed to parse certificate subject: " + err.Error())
	} else if len(rest) != 0 {
		return nil, fmt.Errorf("trailing data in certificate subject: %v", rest)
	}
	return subject, nil
}

func (tbs *TBSCertificate) GetExtension(id asn1.ObjectIdentifier) []Extension {
	var exts []Extension
	for _, ext := range tbs.Extensions {
		if ext.Id.Equal(id) {
			exts = append(exts, ext)
		}
	}
	return exts
}

// CommonNames returns the raw values of every CN attribute in the subject,
// in order.  Unlike most certificate parsers, all attributes of a
// multi-valued RDN are considered, not just the first.
func (rdns RDNSequence) CommonNames() []asn1.RawValue {
	var cns []asn1.RawValue
	for _, rdn := range rdns {
		for _, atv := range rdn {
			if atv.Type.Equal(oidCommonName) {
				cns = append(cns, atv.Value)
			}
		}
	}
	return cns
}
