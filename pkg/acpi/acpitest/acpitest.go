// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acpitest fabricates ACPI tables and physical memory images for
// tests.
package acpitest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/xaionaro-go/bytesextra"

	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/physmem"
)

// Table builds the bytes of a table tagged sig carrying payload, with a
// correct length and checksum.
func Table(sig string, oemID, oemTableID string, payload []byte) []byte {
	var hdr acpi.SdtHeader
	copy(hdr.Signature[:], sig)
	copy(hdr.OEMID[:], oemID)
	copy(hdr.OEMTableID[:], oemTableID)
	hdr.Length = uint32(acpi.HeaderSize + len(payload))
	hdr.Revision = 2
	hdr.OEMRevision = 1
	hdr.CreatorID = binary.LittleEndian.Uint32([]byte("ACPT"))
	hdr.CreatorRevision = 1

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		panic(err)
	}
	buf.Write(payload)
	return FixChecksum(buf.Bytes())
}

// FixChecksum sets the checksum byte of table so that it sums to zero.
func FixChecksum(table []byte) []byte {
	const checksumOffset = 9
	table[checksumOffset] = 0
	table[checksumOffset] = -acpi.Checksum(table)
	return table
}

// Fadt builds an ACPI 1.0 FADT pointing to dsdt. If xDsdt is not nil the
// ACPI 2.0+ extension block is appended with XDsdt set to *xDsdt.
func Fadt(dsdt uint32, xDsdt *uint64) []byte {
	fixed := acpi.FadtStruct{
		Dsdt:           dsdt,
		SciInterrupt:   9,
		SmiCommandPort: 0xb2,
		AcpiEnable:     0xf1,
		AcpiDisable:    0xf0,
		Pm1aEventBlock: 0x600,
		PmTimerBlock:   0x608,
		PmTimerLength:  4,
		Flags:          0x84a5,
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, fixed); err != nil {
		panic(err)
	}
	if xDsdt != nil {
		ext := acpi.FadtAcpi2Struct{
			XDsdt: *xDsdt,
			XPmTimerBlock: acpi.GenericAddressStructure{
				AddressSpace: 1,
				BitWidth:     32,
				AccessSize:   3,
				Address:      0x608,
			},
		}
		if err := binary.Write(&buf, binary.LittleEndian, ext); err != nil {
			panic(err)
		}
	}
	// drop the zeroed header written above, Table adds a real one
	return Table("FACP", "LNXBT ", "ACPIDTST", buf.Bytes()[acpi.HeaderSize:])
}

// RootTable builds a RSDT (entrySize 4) or a XSDT (entrySize 8).
func RootTable(entrySize int, addrs ...uint64) []byte {
	payload := make([]byte, 0, entrySize*len(addrs))
	for _, addr := range addrs {
		switch entrySize {
		case 4:
			payload = binary.LittleEndian.AppendUint32(payload, uint32(addr))
		case 8:
			payload = binary.LittleEndian.AppendUint64(payload, addr)
		default:
			panic(fmt.Sprintf("invalid entry size %d", entrySize))
		}
	}
	sig := "XSDT"
	if entrySize == 4 {
		sig = "RSDT"
	}
	return Table(sig, "LNXBT ", "ACPIDTST", payload)
}

// Memory is a fabricated physical memory range.
type Memory struct {
	Base uint64
	Data []byte
}

// NewMemory returns size bytes of memory at base filled with a repeating
// pattern.
func NewMemory(base uint64, size int) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	return &Memory{Base: base, Data: data}
}

// Place writes b at physical address physAddr.
func (m *Memory) Place(physAddr uint64, b []byte) {
	w := bytesextra.NewReadWriteSeeker(m.Data)
	if _, err := w.Seek(int64(physAddr-m.Base), io.SeekStart); err != nil {
		panic(err)
	}
	if _, err := w.Write(b); err != nil {
		panic(err)
	}
}

// Image returns a physmem.Image over the memory.
func (m *Memory) Image() *physmem.Image {
	return physmem.NewImage(m.Base, bytes.NewReader(m.Data), int64(len(m.Data)))
}
