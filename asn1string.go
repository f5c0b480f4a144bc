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
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// StringKind is the alternative chosen in a DirectoryString-like CHOICE.
// Its values are the universal tag numbers.
type StringKind int

const (
	StringUnrecognized StringKind = 0
	StringBit          StringKind = asn1.TagBitString
	StringOctet        StringKind = asn1.TagOctetString
	StringUTF8         StringKind = asn1.TagUTF8String
	StringNumeric      StringKind = asn1.TagNumericString
	StringPrintable    StringKind = asn1.TagPrintableString
	StringTeletex      StringKind = asn1.TagT61String
	StringVideotex     StringKind = 21
	StringIA5          StringKind = asn1.TagIA5String
	StringGraphic      StringKind = 25
	StringVisible      StringKind = 26 // also ISO646String
	StringGeneral      StringKind = asn1.TagGeneralString
	StringUniversal    StringKind = 28
	StringCharacter    StringKind = 29
	StringBMP          StringKind = asn1.TagBMPString
)

func (kind StringKind) String() string {
	switch kind {
	case StringBit:
		return "BIT STRING"
	case StringOctet:
		return "OCTET STRING"
	case StringUTF8:
		return "UTF8String"
	case StringNumeric:
		return "NumericString"
	case StringPrintable:
		return "PrintableString"
	case StringTeletex:
		return "TeletexString"
	case StringVideotex:
		return "VideotexString"
	case StringIA5:
		return "IA5String"
	case StringGraphic:
		return "GraphicString"
	case StringVisible:
		return "VisibleString"
	case StringGeneral:
		return "GeneralString"
	case StringUniversal:
		return "UniversalString"
	case StringCharacter:
		return "CHARACTER STRING"
	case StringBMP:
		return "BMPString"
	}
	return "unrecognized"
}

func stringKindOf(value *asn1.RawValue) StringKind {
	if value.Class != asn1.ClassUniversal || value.IsCompound {
		return StringUnrecognized
	}
	switch kind := StringKind(value.Tag); kind {
	case StringBit, StringOctet, StringUTF8, StringNumeric, StringPrintable,
		StringTeletex, StringVideotex, StringIA5, StringGraphic, StringVisible,
		StringGeneral, StringUniversal, StringCharacter, StringBMP:
		return kind
	}
	return StringUnrecognized
}

var (
	bmpStringEncoding       encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	universalStringEncoding encoding.Encoding = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
)

func decodeWith(enc encoding.Encoding, value []byte) (string, error) {
	decoded, err := enc.NewDecoder().Bytes(value)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// Decode bytes that are supposed to be UTF-8, falling back to Latin-1
// since CAs routinely get this wrong.
func utf8OrLatin1(value []byte) (string, error) {
	if utf8.Valid(value) {
		return string(value), nil
	}
	return decodeWith(charmap.ISO8859_1, value)
}

// decodeASN1String decodes any of the string types that appear in
// certificate subjects.  Character set restrictions of the narrower types
// (PrintableString, IA5String, ...) are not enforced.
func decodeASN1String(value *asn1.RawValue) (string, StringKind, error) {
	kind := stringKindOf(value)
	var str string
	var err error
	switch kind {
	case StringUTF8:
		if !utf8.Valid(value.Bytes) {
			return "", kind, errors.New("UTF8String contains invalid UTF-8")
		}
		str = string(value.Bytes)
	case StringNumeric, StringPrintable, StringTeletex, StringVideotex, StringIA5,
		StringGraphic, StringVisible, StringGeneral, StringCharacter:
		// 8 bit charsets; treated as ISO-8859-1
		str, err = decodeWith(charmap.ISO8859_1, value.Bytes)
	case StringBMP:
		if len(value.Bytes)%2 != 0 {
			return "", kind, errors.New("malformed BMPString: odd length")
		}
		str, err = decodeWith(bmpStringEncoding, value.Bytes)
	case StringUniversal:
		if len(value.Bytes)%4 != 0 {
			return "", kind, errors.New("malformed UniversalString: length not a multiple of 4")
		}
		str, err = decodeWith(universalStringEncoding, value.Bytes)
	case StringOctet:
		str, err = utf8OrLatin1(value.Bytes)
	case StringBit:
		if len(value.Bytes) == 0 || value.Bytes[0] != 0 {
			return "", kind, errors.New("BIT STRING is not a whole number of octets")
		}
		str, err = utf8OrLatin1(value.Bytes[1:])
	default:
		return "", kind, fmt.Errorf("not a string (class %d, tag %d)", value.Class, value.Tag)
	}
	if err != nil {
		return "", kind, fmt.Errorf("malformed %s: %w", kind, err)
	}
	return str, kind, nil
}
