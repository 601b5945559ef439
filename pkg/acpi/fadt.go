// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/camelcase"
)

// Sizes of the FADT layouts.
const (
	// FadtSize is the size of the ACPI 1.0 fixed layout, up to and
	// including the flags field.
	FadtSize = 116

	// FadtAcpi2Size is the size of the ACPI 2.0+ extension block that
	// immediately follows the 1.0 layout.
	FadtAcpi2Size = 128
)

// Errors returned by NewFadt.
var (
	ErrNotFadt      = errors.New("table is not a FADT")
	ErrFadtTooShort = errors.New("FADT is shorter than the ACPI 1.0 layout")
)

// FadtStruct is the ACPI 1.0 fixed layout of the FADT.
type FadtStruct struct {
	Header       SdtHeader
	FirmwareCtrl uint32
	Dsdt         uint32

	// used in ACPI 1.0 only
	Reserved uint8

	PreferredPowerManagement uint8
	SciInterrupt             uint16
	SmiCommandPort           uint32
	AcpiEnable               uint8
	AcpiDisable              uint8
	S4BiosReq                uint8
	PstateControl            uint8
	Pm1aEventBlock           uint32
	Pm1bEventBlock           uint32
	Pm1aControlBlock         uint32
	Pm1bControlBlock         uint32
	Pm2ControlBlock          uint32
	PmTimerBlock             uint32
	Gpe0Block                uint32
	Gpe1Block                uint32
	Pm1EventLength           uint8
	Pm1ControlLength         uint8
	Pm2ControlLength         uint8
	PmTimerLength            uint8
	Gpe0Length               uint8
	Gpe1Length               uint8
	Gpe1Base                 uint8
	CStateControl            uint8
	WorstC2Latency           uint16
	WorstC3Latency           uint16
	FlushSize                uint16
	FlushStride              uint16
	DutyOffset               uint8
	DutyWidth                uint8
	DayAlarm                 uint8
	MonthAlarm               uint8
	Century                  uint8

	// reserved in ACPI 1.0
	BootArchitectureFlags uint16

	Reserved2 uint8
	Flags     uint32
}

// GenericAddressStructure describes a register block in some address space.
type GenericAddressStructure struct {
	AddressSpace uint8
	BitWidth     uint8
	BitOffset    uint8
	AccessSize   uint8
	Address      uint64
}

// FadtAcpi2Struct is the ACPI 2.0+ extension of the FADT.
type FadtAcpi2Struct struct {
	ResetReg   GenericAddressStructure
	ResetValue uint8
	Reserved3  [3]byte

	XFirmwareControl uint64
	XDsdt            uint64

	XPm1aEventBlock   GenericAddressStructure
	XPm1bEventBlock   GenericAddressStructure
	XPm1aControlBlock GenericAddressStructure
	XPm1bControlBlock GenericAddressStructure
	XPm2ControlBlock  GenericAddressStructure
	XPmTimerBlock     GenericAddressStructure
	XGpe0Block        GenericAddressStructure
	XGpe1Block        GenericAddressStructure
}

// Fadt is a validated Fixed ACPI Description Table ("FACP").
type Fadt struct {
	sdt   *Sdt
	fixed FadtStruct
}

// NewFadt checks the tag and the size of sdt. The caller decides how severe
// a rejection is.
func NewFadt(sdt *Sdt) (*Fadt, error) {
	if sdt.Tag() != SigFADT {
		return nil, fmt.Errorf("%w: tag %q", ErrNotFadt, sdt.Tag())
	}
	if sdt.Len() < FadtSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrFadtTooShort, sdt.Len(), FadtSize)
	}

	f := &Fadt{sdt: sdt}
	if err := binary.Read(bytes.NewReader(sdt.Bytes()), binary.LittleEndian, &f.fixed); err != nil {
		return nil, err
	}
	return f, nil
}

// Sdt returns the underlying table.
func (f *Fadt) Sdt() *Sdt {
	return f.sdt
}

// Fixed returns the ACPI 1.0 part of the table.
func (f *Fadt) Fixed() FadtStruct {
	return f.fixed
}

// Acpi2Struct returns the ACPI 2.0+ extension block. Tables written by
// ACPI 1.0 firmware are too short to have one, in which case ok is false.
func (f *Fadt) Acpi2Struct() (ext *FadtAcpi2Struct, ok bool) {
	b := f.sdt.Bytes()[FadtSize:]
	if len(b) < FadtAcpi2Size {
		return nil, false
	}
	ext = &FadtAcpi2Struct{}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, ext); err != nil {
		return nil, false
	}
	return ext, true
}

// DsdtAddress resolves the physical address of the DSDT. The 64-bit pointer
// of the extension block wins if present, non-zero and addressable on this
// machine.
func (f *Fadt) DsdtAddress() uint64 {
	if ext, ok := f.Acpi2Struct(); ok && ext.XDsdt != 0 && ext.XDsdt <= uint64(^uintptr(0)) {
		return ext.XDsdt
	}
	return uint64(f.fixed.Dsdt)
}

// Summary prints a multi-line summary of the FADT fields.
func (f *Fadt) Summary() string {
	var s strings.Builder
	s.WriteString(f.sdt.Summary())
	writeFields(&s, reflect.ValueOf(f.fixed))
	if ext, ok := f.Acpi2Struct(); ok {
		writeFields(&s, reflect.ValueOf(*ext))
	}
	return s.String()
}

func writeFields(s *strings.Builder, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type == reflect.TypeOf(SdtHeader{}) || strings.HasPrefix(field.Name, "Reserved") {
			continue
		}
		name := strings.Join(camelcase.Split(field.Name), " ")
		fmt.Fprintf(s, "%-26s : %s\n", name, describeValue(v.Field(i)))
	}
}

func describeValue(v reflect.Value) string {
	switch value := v.Interface().(type) {
	case GenericAddressStructure:
		return fmt.Sprintf("space %d width %d offset %d access %d address %#x",
			value.AddressSpace, value.BitWidth, value.BitOffset, value.AccessSize, value.Address)
	}
	switch v.Kind() {
	case reflect.Uint8:
		return fmt.Sprintf("%#02x", v.Uint())
	case reflect.Uint16:
		return fmt.Sprintf("%#04x", v.Uint())
	case reflect.Uint32:
		return fmt.Sprintf("%#08x", v.Uint())
	case reflect.Uint64:
		return fmt.Sprintf("%#016x", v.Uint())
	}
	return fmt.Sprintf("%v", v.Interface())
}
