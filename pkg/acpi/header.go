// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acpi locates ACPI System Description Tables in physical memory,
// validates them and keeps them in a signature-indexed store.
//
// See the ACPI specification, chapter 5.2 "ACPI System Description Tables":
// * https://uefi.org/specs/ACPI/6.5/05_ACPI_Software_Programming_Model.html
package acpi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// HeaderSize is the size of the header shared by every SDT.
const HeaderSize = 36

// Well-known table tags.
var (
	SigFADT = [4]byte{'F', 'A', 'C', 'P'}
	SigDSDT = [4]byte{'D', 'S', 'D', 'T'}
	SigSSDT = [4]byte{'S', 'S', 'D', 'T'}
	SigRSDT = [4]byte{'R', 'S', 'D', 'T'}
	SigXSDT = [4]byte{'X', 'S', 'D', 'T'}
)

// SdtHeader is the raw SDT header as laid out by firmware. It has no padding
// and is decoded little-endian.
type SdtHeader struct {
	Signature       [4]byte
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OEMID           [6]byte
	OEMTableID      [8]byte
	OEMRevision     uint32
	CreatorID       uint32
	CreatorRevision uint32
}

// Key returns the composite signature identifying the table.
func (h SdtHeader) Key() SdtSignature {
	return SdtSignature{
		Signature:  h.Signature,
		OEMID:      h.OEMID,
		OEMTableID: h.OEMTableID,
	}
}

func parseHeader(b []byte) (SdtHeader, error) {
	var hdr SdtHeader
	if len(b) < HeaderSize {
		return hdr, ErrInvalidSize
	}
	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return hdr, err
	}
	return hdr, nil
}

// SdtSignature identifies a table. Several tables can share a tag (SSDTs
// usually do), the composite key is expected to be unique.
type SdtSignature struct {
	Signature  [4]byte
	OEMID      [6]byte
	OEMTableID [8]byte
}

// Compare orders signatures by tag, then OEM id, then OEM table id. It
// returns -1, 0 or +1.
func (s SdtSignature) Compare(other SdtSignature) int {
	if c := bytes.Compare(s.Signature[:], other.Signature[:]); c != 0 {
		return c
	}
	if c := bytes.Compare(s.OEMID[:], other.OEMID[:]); c != 0 {
		return c
	}
	return bytes.Compare(s.OEMTableID[:], other.OEMTableID[:])
}

// Tag returns the 4-byte table tag as text.
func (s SdtSignature) Tag() string {
	return string(s.Signature[:])
}

func (s SdtSignature) String() string {
	return fmt.Sprintf("%s-%s-%s",
		strings.ToValidUTF8(string(s.Signature[:]), "�"),
		strings.ToValidUTF8(string(s.OEMID[:]), "�"),
		strings.ToValidUTF8(string(s.OEMTableID[:]), "�"),
	)
}
