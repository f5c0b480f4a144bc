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
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// GeneralNameType is the context-specific tag number of a GeneralName (RFC 5280 4.2.1.6).
type GeneralNameType int

const (
	GeneralNameOther         GeneralNameType = 0
	GeneralNameRFC822        GeneralNameType = 1
	GeneralNameDNS           GeneralNameType = 2
	GeneralNameX400Address   GeneralNameType = 3
	GeneralNameDirectoryName GeneralNameType = 4
	GeneralNameEDIPartyName  GeneralNameType = 5
	GeneralNameURI           GeneralNameType = 6
	GeneralNameIPAddress     GeneralNameType = 7
	GeneralNameRegisteredID  GeneralNameType = 8
	GeneralNameUnknown       GeneralNameType = -1
)

func (t GeneralNameType) String() string {
	switch t {
	case GeneralNameOther:
		return "otherName"
	case GeneralNameRFC822:
		return "rfc822Name"
	case GeneralNameDNS:
		return "dNSName"
	case GeneralNameX400Address:
		return "x400Address"
	case GeneralNameDirectoryName:
		return "directoryName"
	case GeneralNameEDIPartyName:
		return "ediPartyName"
	case GeneralNameURI:
		return "uniformResourceIdentifier"
	case GeneralNameIPAddress:
		return "iPAddress"
	case GeneralNameRegisteredID:
		return "registeredID"
	}
	return "unknown"
}

type GeneralName struct {
	Type  GeneralNameType
	Tag   cryptobyte_asn1.Tag
	Value []byte
}

const (
	tagClassMask            = 0xc0
	tagNumberMask           = 0x1f
	tagClassContextSpecific = 0x80
)

func generalNameTypeOf(tag cryptobyte_asn1.Tag) GeneralNameType {
	if tag&tagClassMask != tagClassContextSpecific {
		return GeneralNameUnknown
	}
	if number := GeneralNameType(tag & tagNumberMask); number <= GeneralNameRegisteredID {
		return number
	}
	return GeneralNameUnknown
}

// ParseGeneralNames parses the value of a subjectAltName extension.
func ParseGeneralNames(value []byte) ([]GeneralName, error) {
	input := cryptobyte.String(value)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) {
		return nil, errors.New("failed to parse subjectAltName extension: bad SAN sequence")
	}
	if !input.Empty() {
		// Don't complain if the SAN is followed by exactly one zero byte,
		// which is a common error.
		if !(len(input) == 1 && input[0] == 0) {
			return nil, fmt.Errorf("trailing data in subjectAltName extension: %v", []byte(input))
		}
	}

	var names []GeneralName
	for !seq.Empty() {
		var (
			item cryptobyte.String
			tag  cryptobyte_asn1.Tag
		)
		if !seq.ReadAnyASN1(&item, &tag) {
			return nil, errors.New("failed to parse subjectAltName extension item")
		}
		names = append(names, GeneralName{
			Type:  generalNameTypeOf(tag),
			Tag:   tag,
			Value: []byte(item),
		})
	}
	return names, nil
}

// ParseSubjectAltNames returns the GeneralNames of every subjectAltName extension, in order.
func (tbs *TBSCertificate) ParseSubjectAltNames() ([]GeneralName, error) {
	var sans []GeneralName
	for _, sanExt := range tbs.GetExtension(oidExtensionSubjectAltName) {
		names, err := ParseGeneralNames(sanExt.Value)
		if err != nil {
			return nil, err
		}
		sans = append(sans, names...)
	}
	return sans, nil
}
