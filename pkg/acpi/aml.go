// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi

import (
	"fmt"
)

// AmlContainingTable is a table carrying AML bytecode after its header.
// Consumers of AML do not need to tell DSDTs and SSDTs apart.
type AmlContainingTable interface {
	AML() []byte
	Header() SdtHeader
}

// Dsdt is the Differentiated System Description Table.
type Dsdt struct {
	sdt *Sdt
}

// NewDsdt wraps sdt if it is tagged "DSDT".
func NewDsdt(sdt *Sdt) (*Dsdt, error) {
	if sdt.Tag() != SigDSDT {
		return nil, fmt.Errorf("table %s is not a DSDT", sdt.Signature())
	}
	return &Dsdt{sdt: sdt}, nil
}

// AML implements AmlContainingTable.
func (d *Dsdt) AML() []byte { return d.sdt.Data() }

// Header implements AmlContainingTable.
func (d *Dsdt) Header() SdtHeader { return d.sdt.Header() }

// Sdt returns the underlying table.
func (d *Dsdt) Sdt() *Sdt { return d.sdt }

// Ssdt is a Secondary System Description Table.
type Ssdt struct {
	sdt *Sdt
}

// NewSsdt wraps sdt if it is tagged "SSDT".
func NewSsdt(sdt *Sdt) (*Ssdt, error) {
	if sdt.Tag() != SigSSDT {
		return nil, fmt.Errorf("table %s is not a SSDT", sdt.Signature())
	}
	return &Ssdt{sdt: sdt}, nil
}

// AML implements AmlContainingTable.
func (s *Ssdt) AML() []byte { return s.sdt.Data() }

// Header implements AmlContainingTable.
func (s *Ssdt) Header() SdtHeader { return s.sdt.Header() }

// Sdt returns the underlying table.
func (s *Ssdt) Sdt() *Sdt { return s.sdt }

// PossibleAmlTable is either a *Dsdt or a *Ssdt. The set is closed: no
// other type can implement it.
type PossibleAmlTable interface {
	AmlContainingTable
	possibleAmlTable()
}

func (*Dsdt) possibleAmlTable() {}
func (*Ssdt) possibleAmlTable() {}

// TryNewAmlTable classifies sdt by its tag. Any tag other than "DSDT" and
// "SSDT" yields false.
func TryNewAmlTable(sdt *Sdt) (PossibleAmlTable, bool) {
	switch sdt.Tag() {
	case SigDSDT:
		return &Dsdt{sdt: sdt}, true
	case SigSSDT:
		return &Ssdt{sdt: sdt}, true
	}
	return nil, false
}

var (
	_ PossibleAmlTable = (*Dsdt)(nil)
	_ PossibleAmlTable = (*Ssdt)(nil)
)
