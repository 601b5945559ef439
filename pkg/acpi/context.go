// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/linuxboot/acpid/pkg/log"
)

// Context owns every table discovered at startup. It is built once by
// NewContext and never torn down; after construction only the handle index
// may grow.
type Context struct {
	tables []*Sdt
	dsdt   *Dsdt
	fadt   *Fadt

	// sdtOrder maps a handle (position) to the signature registered
	// there. Handles are only handed out for tables loaded by this
	// context, in the spirit of ACPI DDB handles.
	sdtOrderLock sync.RWMutex
	sdtOrder     []SdtSignature

	// NextCtx is reserved for a handle allocator; nothing reads it yet.
	NextCtx atomic.Uint64
}

// NewContext loads the tables at rootPhysAddrs, in order, indexes them and
// runs the FADT bootstrap. rootPhysAddrs are the entries of the RSDT or XSDT
// (see ParseRootTable).
//
// A table pointed by the root table that cannot be loaded is an error: ACPI
// being present and correct is a precondition of the service. A missing or
// broken FADT or DSDT is only logged and leaves Fadt and Dsdt nil.
func NewContext(m Physmapper, rootPhysAddrs []uint64) (*Context, error) {
	ctx := &Context{}
	for _, physAddr := range rootPhysAddrs {
		if uint64(uintptr(physAddr)) != physAddr {
			return nil, fmt.Errorf("table address %#x does not fit the machine word", physAddr)
		}
		log.Infof("table at %#08x", physAddr)

		sdt, err := LoadFromPhysical(m, physAddr)
		if err != nil {
			return nil, fmt.Errorf("unable to load physical SDT: %w", err)
		}
		ctx.tables = append(ctx.tables, sdt)
	}

	for _, sdt := range ctx.tables {
		ctx.NewIndex(sdt.Signature())
	}

	ctx.initFadt(m)
	return ctx, nil
}

func (ctx *Context) initFadt(m Physmapper) {
	fadtSdt := ctx.TakeSingleSdt(SigFADT)
	if fadtSdt == nil {
		log.Errorf("failed to find FADT")
		return
	}

	fadt, err := NewFadt(fadtSdt)
	if err != nil {
		log.Errorf("failed to validate FADT: %v", err)
		return
	}

	dsdtPtr := fadt.DsdtAddress()
	log.Infof("DSDT at %#x", dsdtPtr)

	dsdtSdt, err := LoadFromPhysical(m, dsdtPtr)
	if err != nil {
		log.Errorf("failed to load DSDT: %v", err)
		return
	}
	dsdt, err := NewDsdt(dsdtSdt)
	if err != nil {
		log.Errorf("failed to load DSDT: %v", err)
		return
	}

	ctx.fadt = fadt
	ctx.dsdt = dsdt
	ctx.tables = append(ctx.tables, dsdtSdt)
	ctx.NewIndex(dsdtSdt.Signature())
}

// Fadt returns the FADT, or nil if the bootstrap failed.
func (ctx *Context) Fadt() *Fadt {
	return ctx.fadt
}

// Dsdt returns the DSDT, or nil if the bootstrap failed.
func (ctx *Context) Dsdt() *Dsdt {
	return ctx.dsdt
}

// Tables returns all tables in discovery order. The slice must not be
// modified.
func (ctx *Context) Tables() []*Sdt {
	return ctx.tables
}

// Ssdts iterates over all SSDTs in discovery order.
func (ctx *Context) Ssdts() iter.Seq[*Ssdt] {
	return func(yield func(*Ssdt) bool) {
		for sdt := range ctx.FindMultipleSdts(SigSSDT) {
			if !yield(&Ssdt{sdt: sdt}) {
				return
			}
		}
	}
}

// FindSingleSdtPos returns the position of the first table tagged tag, or
// -1. Several matches are logged since the tag is expected to be unique.
func (ctx *Context) FindSingleSdtPos(tag [4]byte) int {
	pos, count := -1, 0
	for idx, sdt := range ctx.tables {
		if sdt.Tag() != tag {
			continue
		}
		if pos < 0 {
			pos = idx
		}
		count++
	}

	if count > 1 {
		log.Warnf("expected only a single SDT of signature %q (%v), but there were %d",
			tag[:], tag, count)
	}
	return pos
}

// TakeSingleSdt is FindSingleSdtPos returning the table itself, or nil.
func (ctx *Context) TakeSingleSdt(tag [4]byte) *Sdt {
	pos := ctx.FindSingleSdtPos(tag)
	if pos < 0 {
		return nil
	}
	return ctx.tables[pos]
}

// FindMultipleSdts iterates over the tables tagged tag in discovery order.
func (ctx *Context) FindMultipleSdts(tag [4]byte) iter.Seq[*Sdt] {
	return func(yield func(*Sdt) bool) {
		for _, sdt := range ctx.tables {
			if sdt.Tag() != tag {
				continue
			}
			if !yield(sdt) {
				return
			}
		}
	}
}

// SdtFromSignature returns the first table matching all three fields of
// signature, or nil.
func (ctx *Context) SdtFromSignature(signature SdtSignature) *Sdt {
	for _, sdt := range ctx.tables {
		if sdt.Signature() == signature {
			return sdt
		}
	}
	return nil
}

// NewIndex registers signature at the next handle and returns that handle.
func (ctx *Context) NewIndex(signature SdtSignature) int {
	ctx.sdtOrderLock.Lock()
	defer ctx.sdtOrderLock.Unlock()
	ctx.sdtOrder = append(ctx.sdtOrder, signature)
	return len(ctx.sdtOrder) - 1
}

// GetSignatureFromIndex returns the signature registered at index.
func (ctx *Context) GetSignatureFromIndex(index int) (SdtSignature, bool) {
	ctx.sdtOrderLock.RLock()
	defer ctx.sdtOrderLock.RUnlock()
	if index < 0 || index >= len(ctx.sdtOrder) {
		return SdtSignature{}, false
	}
	return ctx.sdtOrder[index], true
}

// GetIndexFromSignature returns the most recent handle registered for
// signature, so later registrations shadow earlier ones.
func (ctx *Context) GetIndexFromSignature(signature SdtSignature) (int, bool) {
	ctx.sdtOrderLock.RLock()
	defer ctx.sdtOrderLock.RUnlock()
	for idx := len(ctx.sdtOrder) - 1; idx >= 0; idx-- {
		if ctx.sdtOrder[idx] == signature {
			return idx, true
		}
	}
	return -1, false
}
