// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors returned by ParseRootTable.
var (
	ErrNotRootTable        = errors.New("table is neither a RSDT nor a XSDT")
	ErrRootTableMisaligned = errors.New("root table payload is not a whole number of entries")
)

// ParseRootTable returns the physical addresses listed by a RSDT (32-bit
// entries) or a XSDT (64-bit entries), in table order.
func ParseRootTable(root *Sdt) ([]uint64, error) {
	var entrySize int
	switch root.Tag() {
	case SigRSDT:
		entrySize = 4
	case SigXSDT:
		entrySize = 8
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotRootTable, root.Tag())
	}

	payload := root.Data()
	if len(payload)%entrySize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, entry size %d", ErrRootTableMisaligned, len(payload), entrySize)
	}

	addrs := make([]uint64, 0, len(payload)/entrySize)
	for off := 0; off < len(payload); off += entrySize {
		if entrySize == 4 {
			addrs = append(addrs, uint64(binary.LittleEndian.Uint32(payload[off:])))
		} else {
			addrs = append(addrs, binary.LittleEndian.Uint64(payload[off:]))
		}
	}
	return addrs, nil
}

// LoadRootTable loads the RSDT or XSDT at physAddr and returns its entries.
func LoadRootTable(m Physmapper, physAddr uint64) ([]uint64, error) {
	root, err := LoadFromPhysical(m, physAddr)
	if err != nil {
		return nil, err
	}
	return ParseRootTable(root)
}
