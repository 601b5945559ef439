// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dump

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxboot/acpid/cmds/acpitool/commands"
	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpi/acpitest"
	"github.com/linuxboot/acpid/pkg/acpifs"
)

const (
	memBase  = 0x100000
	xsdtAddr = memBase + 0x20
	ssdtAddr = memBase + 0x200
)

func TestDump(t *testing.T) {
	ssdt := acpitest.Table("SSDT", "BOCHS ", "CPUSSDT ", []byte{1, 2, 3, 4, 5, 6})
	mem := acpitest.NewMemory(memBase, acpi.PageSize)
	mem.Place(xsdtAddr, acpitest.RootTable(8, ssdtAddr))
	mem.Place(ssdtAddr, ssdt)

	ctx, err := commands.LoadContext(mem.Image(), xsdtAddr)
	require.NoError(t, err)
	srv := acpifs.NewServer(ctx)
	sig, err := commands.LookupSignature(ctx, "SSDT")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Dump(&out, srv, sig, 0, nil))
	require.Equal(t, ssdt, out.Bytes())

	out.Reset()
	size := 4
	require.NoError(t, Dump(&out, srv, sig, acpi.HeaderSize+1, &size))
	require.Equal(t, []byte{2, 3, 4, 5}, out.Bytes())

	out.Reset()
	require.NoError(t, Dump(&out, srv, sig, acpi.HeaderSize+4, &size))
	require.Equal(t, []byte{5, 6}, out.Bytes())

	var missing acpi.SdtSignature
	copy(missing.Signature[:], "HPET")
	require.ErrorIs(t, Dump(&out, srv, missing, 0, nil), acpifs.ErrTableNotFound)
}
