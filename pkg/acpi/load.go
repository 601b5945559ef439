// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi

import (
	"fmt"

	"github.com/linuxboot/acpid/pkg/check"
	"github.com/linuxboot/acpid/pkg/log"
)

const (
	// PageSize is the granularity of physical mappings.
	PageSize = 4096

	// simultaneousPageCount bounds the size of the windows used to fetch
	// the part of a table following its header pages.
	simultaneousPageCount = 4
)

// Mapping is a window of physical memory. Bytes stays valid until Release.
type Mapping interface {
	Bytes() []byte
	Release() error
}

// Physmapper maps physical memory into the address space of the caller.
// After Physmap returns, reading Bytes() of the mapping observes length
// bytes of physical memory starting at physAddr.
type Physmapper interface {
	Physmap(physAddr uint64, length int) (Mapping, error)
}

// LoadErrorKind tells which stage of a physical table load failed.
type LoadErrorKind int

// Load error kinds.
const (
	LoadErrorIO LoadErrorKind = iota
	LoadErrorValidity
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadErrorIO:
		return "IO error"
	case LoadErrorValidity:
		return "invalid table"
	}
	return fmt.Sprintf("LoadErrorKind(%d)", int(k))
}

// TablePhysLoadError is returned by LoadFromPhysical. For LoadErrorValidity
// the wrapped error is ErrInvalidSize or ErrBadChecksum.
type TablePhysLoadError struct {
	Kind     LoadErrorKind
	PhysAddr uint64
	Err      error
}

func (err *TablePhysLoadError) Error() string {
	return fmt.Sprintf("unable to load table at %#x: %s: %v", err.PhysAddr, err.Kind, err.Err)
}

func (err *TablePhysLoadError) Unwrap() error {
	return err.Err
}

// withMapping maps [physAddr, physAddr+pageCount*PageSize), hands the window
// to fn and releases the mapping before returning.
func withMapping(m Physmapper, physAddr uint64, pageCount int, fn func(window []byte) error) error {
	size := pageCount * PageSize
	mapping, err := m.Physmap(physAddr, size)
	if err != nil {
		return fmt.Errorf("unable to map %d pages at %#x: %w", pageCount, physAddr, err)
	}
	defer func() {
		if err := mapping.Release(); err != nil {
			log.Warnf("unable to release mapping at %#x: %v", physAddr, err)
		}
	}()

	window := mapping.Bytes()
	if err := check.BytesRange(len(window), 0, size); err != nil {
		return fmt.Errorf("short mapping at %#x: %w", physAddr, err)
	}
	return fn(window[:size])
}

// LoadFromPhysical copies the table starting at physAddr into an owned
// buffer and validates it.
//
// The header is read first, from one page or from two if it straddles a
// page boundary, since its length field is the only way to know how much
// more to fetch. The remainder is fetched in windows of up to
// simultaneousPageCount pages. Every mapping is released once its bytes are
// copied.
func LoadFromPhysical(m Physmapper, physAddr uint64) (*Sdt, error) {
	startPage := physAddr &^ (PageSize - 1)
	pageOffset := int(physAddr - startPage)

	headerPageCount := 1
	if PageSize-pageOffset < HeaderSize {
		headerPageCount = 2
	}

	var (
		loaded []byte
		left   int
	)
	err := withMapping(m, startPage, headerPageCount, func(window []byte) error {
		sdtMem := window[pageOffset:]
		hdr, err := parseHeader(sdtMem)
		if err != nil {
			return err
		}

		totalLength := int(hdr.Length)
		baseLength := min(totalLength, len(sdtMem))

		loaded = append([]byte(nil), sdtMem[:baseLength]...)
		left = totalLength - baseLength
		return nil
	})
	if err != nil {
		return nil, &TablePhysLoadError{Kind: LoadErrorIO, PhysAddr: physAddr, Err: err}
	}

	offset := startPage + uint64(headerPageCount*PageSize)
	for left > 0 {
		toCopy := min(left, simultaneousPageCount*PageSize)
		pageCount := (toCopy + PageSize - 1) / PageSize

		err := withMapping(m, offset, pageCount, func(window []byte) error {
			loaded = append(loaded, window[:toCopy]...)
			return nil
		})
		if err != nil {
			return nil, &TablePhysLoadError{Kind: LoadErrorIO, PhysAddr: physAddr, Err: err}
		}

		left -= toCopy
		offset += uint64(toCopy)
	}

	sdt, err := NewSdt(loaded)
	if err != nil {
		return nil, &TablePhysLoadError{Kind: LoadErrorValidity, PhysAddr: physAddr, Err: err}
	}
	return sdt, nil
}
