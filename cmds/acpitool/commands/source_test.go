// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpi/acpitest"
	"github.com/linuxboot/acpid/pkg/acpifs"
)

const (
	memBase  = 0x7fe0000
	xsdtAddr = memBase + 0x40
	fadtAddr = memBase + 0x100
	dsdtAddr = memBase + 0x1000
	ssdtAddr = memBase + 0x2000
	apicAddr = memBase + 0x2800
)

func newTestMemory() *acpitest.Memory {
	mem := acpitest.NewMemory(memBase, 4*acpi.PageSize)
	mem.Place(xsdtAddr, acpitest.RootTable(8, fadtAddr, ssdtAddr, apicAddr))
	mem.Place(fadtAddr, acpitest.Fadt(dsdtAddr, nil))
	mem.Place(dsdtAddr, acpitest.Table("DSDT", "BOCHS ", "BXPCDSDT", []byte{0xa4, 0x01}))
	mem.Place(ssdtAddr, acpitest.Table("SSDT", "BOCHS ", "CPUSSDT ", []byte{0x10, 0x20, 0x30}))
	mem.Place(apicAddr, acpitest.Table("APIC", "BOCHS ", "BXPCAPIC", make([]byte, 8)))
	return mem
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat(nil)
	require.NoError(t, err)
	require.Equal(t, FormatText, format)

	s := " JSON"
	format, err = ParseFormat(&s)
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	s = "yaml"
	_, err = ParseFormat(&s)
	var argsErr ErrArgs
	require.ErrorAs(t, err, &argsErr)
}

func TestSourceContext(t *testing.T) {
	mem := newTestMemory()
	path := filepath.Join(t.TempDir(), "mem.bin")
	require.NoError(t, os.WriteFile(path, mem.Data, 0o600))

	src := Source{ImagePath: path, ImageBase: memBase, RootAddr: xsdtAddr}
	ctx, err := src.Context()
	require.NoError(t, err)
	require.Len(t, ctx.Tables(), 4)
	require.NotNil(t, ctx.Dsdt())

	_, err = Source{RootAddr: xsdtAddr}.Context()
	require.ErrorAs(t, err, &ErrArgs{})

	_, err = Source{ImagePath: path, DevMem: true, RootAddr: xsdtAddr}.Context()
	require.ErrorAs(t, err, &ErrArgs{})

	_, err = Source{ImagePath: path, ImageBase: memBase, RootAddr: apicAddr}.Context()
	require.ErrorIs(t, err, acpi.ErrNotRootTable)
}

func TestLookupSignature(t *testing.T) {
	ctx, err := LoadContext(newTestMemory().Image(), xsdtAddr)
	require.NoError(t, err)

	sig, err := LookupSignature(ctx, "SSDT")
	require.NoError(t, err)
	require.Equal(t, "CPUSSDT ", string(sig.OEMTableID[:]))

	sig, err = LookupSignature(ctx, acpifs.Name(ctx.Tables()[2].Signature()))
	require.NoError(t, err)
	require.Equal(t, ctx.Tables()[2].Signature(), sig)

	_, err = LookupSignature(ctx, "HPET")
	require.ErrorIs(t, err, acpifs.ErrTableNotFound)

	_, err = LookupSignature(ctx, "garbage")
	require.ErrorIs(t, err, acpifs.ErrInvalidName)
}
