// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors returned by NewSdt.
var (
	ErrInvalidSize = errors.New("invalid size of sdt")
	ErrBadChecksum = errors.New("bad checksum for sdt")
)

// Sdt is a System Description Table whose length and checksum have been
// verified. The only way to get one is NewSdt (or LoadFromPhysical, which
// calls it), so a *Sdt is always valid.
type Sdt struct {
	raw    []byte
	header SdtHeader
}

// NewSdt validates b and wraps it. b is kept as is and must not be modified
// by the caller afterwards.
func NewSdt(b []byte) (*Sdt, error) {
	hdr, err := parseHeader(b)
	if err != nil {
		return nil, ErrInvalidSize
	}
	if int(hdr.Length) != len(b) {
		return nil, ErrInvalidSize
	}
	if Checksum(b) != 0 {
		return nil, ErrBadChecksum
	}
	return &Sdt{raw: b, header: hdr}, nil
}

// Checksum returns the wrapping byte sum of b. A valid table sums to zero.
func Checksum(b []byte) uint8 {
	var sum uint8
	for _, v := range b {
		sum += v
	}
	return sum
}

// Header returns the decoded table header.
func (s *Sdt) Header() SdtHeader {
	return s.header
}

// Signature returns the composite key of the table.
func (s *Sdt) Signature() SdtSignature {
	return s.header.Key()
}

// Tag returns the 4-byte table tag.
func (s *Sdt) Tag() [4]byte {
	return s.header.Signature
}

// Len is the table length including the header.
func (s *Sdt) Len() int {
	return len(s.raw)
}

// Bytes returns the whole table, header included. The slice is shared and
// must be treated as read-only.
func (s *Sdt) Bytes() []byte {
	return s.raw
}

// Data returns the bytes following the header.
func (s *Sdt) Data() []byte {
	return s.raw[HeaderSize:]
}

func (s *Sdt) String() string {
	return fmt.Sprintf("%s (len %d)", s.Signature(), len(s.raw))
}

// Summary prints a multi-line summary of the table header.
func (s *Sdt) Summary() string {
	h := s.header
	var b strings.Builder
	fmt.Fprintf(&b, "Signature        : %s\n", h.Signature)
	fmt.Fprintf(&b, "Length           : %#08x %d\n", h.Length, h.Length)
	fmt.Fprintf(&b, "Revision         : %d\n", h.Revision)
	fmt.Fprintf(&b, "Checksum         : %#02x\n", h.Checksum)
	fmt.Fprintf(&b, "OEM ID           : %s\n", h.OEMID)
	fmt.Fprintf(&b, "OEM Table ID     : %s\n", h.OEMTableID)
	fmt.Fprintf(&b, "OEM Revision     : %#08x\n", h.OEMRevision)
	fmt.Fprintf(&b, "Creator ID       : %#08x\n", h.CreatorID)
	fmt.Fprintf(&b, "Creator Revision : %#08x\n", h.CreatorRevision)
	return b.String()
}
