// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"io"

	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpifs"
	"github.com/linuxboot/acpid/pkg/physmem"
)

// Source tells where physical memory is read from and where the root table
// is. It is shared by all verbs.
type Source struct {
	ImagePath string `long:"image" description:"path to a raw dump of physical memory"`
	ImageBase uint64 `long:"base" base:"0" description:"physical address of the first byte of the dump"`
	DevMem    bool   `long:"devmem" description:"map physical memory from /dev/mem"`
	RootAddr  uint64 `long:"root" base:"0" required:"true" description:"physical address of the RSDT or XSDT"`
}

// Physmapper opens the selected memory. The returned closer must be closed
// once all tables are loaded.
func (src Source) Physmapper() (acpi.Physmapper, io.Closer, error) {
	switch {
	case src.DevMem && src.ImagePath != "":
		return nil, nil, ErrArgs{Err: fmt.Errorf("--image and --devmem are mutually exclusive")}
	case src.DevMem:
		devMem, err := physmem.OpenDevMem()
		if err != nil {
			return nil, nil, err
		}
		return devMem, devMem, nil
	case src.ImagePath != "":
		img, f, err := physmem.OpenImageFile(src.ImagePath, src.ImageBase)
		if err != nil {
			return nil, nil, err
		}
		return img, f, nil
	}
	return nil, nil, ErrArgs{Err: fmt.Errorf("either --image or --devmem is required")}
}

// Context loads the root table and builds the table store from it.
func (src Source) Context() (*acpi.Context, error) {
	m, closer, err := src.Physmapper()
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return LoadContext(m, src.RootAddr)
}

// LoadContext builds the table store from the root table at rootAddr.
func LoadContext(m acpi.Physmapper, rootAddr uint64) (*acpi.Context, error) {
	addrs, err := acpi.LoadRootTable(m, rootAddr)
	if err != nil {
		return nil, fmt.Errorf("unable to load the root table: %w", err)
	}
	ctx, err := acpi.NewContext(m, addrs)
	if err != nil {
		return nil, fmt.Errorf("unable to load the tables: %w", err)
	}
	return ctx, nil
}

// LookupSignature resolves a table name as printed by "list", or a bare
// four letter tag which then must match a single table.
func LookupSignature(ctx *acpi.Context, name string) (acpi.SdtSignature, error) {
	if len(name) != 4 {
		return acpifs.ParseName(name)
	}
	var tag [4]byte
	copy(tag[:], name)
	sdt := ctx.TakeSingleSdt(tag)
	if sdt == nil {
		return acpi.SdtSignature{}, fmt.Errorf("%w: %s", acpifs.ErrTableNotFound, name)
	}
	return sdt.Signature(), nil
}
