// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package physmem provides ways to map physical memory for the ACPI table
// loader: /dev/mem on a live system, or a memory image in a file or buffer.
package physmem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/linuxboot/acpid/pkg/acpi"
)

// Errors returned by Image mappings.
var (
	ErrOutOfRange      = errors.New("window is outside of the memory image")
	ErrAlreadyReleased = errors.New("mapping already released")
)

// Image is physical memory backed by an io.ReaderAt: offset 0 of the reader
// is physical address Base.
type Image struct {
	Base uint64
	Size int64

	r           io.ReaderAt
	outstanding atomic.Int64
}

var _ acpi.Physmapper = (*Image)(nil)

// NewImage returns an image of size bytes read from r, located at base.
func NewImage(base uint64, r io.ReaderAt, size int64) *Image {
	return &Image{Base: base, Size: size, r: r}
}

// OpenImageFile opens a raw dump of physical memory starting at base. The
// returned file must be closed once the image is no longer used.
func OpenImageFile(path string, base uint64) (*Image, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open memory image '%s': %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("unable to stat memory image '%s': %w", path, err)
	}
	return NewImage(base, f, fi.Size()), f, nil
}

// Physmap implements acpi.Physmapper. The window is copied out of the
// reader, so the mapping stays valid after Release; Release only accounts
// for it.
func (img *Image) Physmap(physAddr uint64, length int) (acpi.Mapping, error) {
	if length < 0 || physAddr < img.Base {
		return nil, fmt.Errorf("%w: %#x+%#x", ErrOutOfRange, physAddr, length)
	}
	offset := physAddr - img.Base
	if offset > uint64(img.Size) || uint64(img.Size)-offset < uint64(length) {
		return nil, fmt.Errorf("%w: %#x+%#x (image %#x+%#x)", ErrOutOfRange, physAddr, length, img.Base, img.Size)
	}

	buf := make([]byte, length)
	if _, err := img.r.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("unable to read %#x bytes at %#x: %w", length, physAddr, err)
	}

	img.outstanding.Add(1)
	return &imageMapping{img: img, buf: buf}, nil
}

// Outstanding returns the number of mappings not released yet.
func (img *Image) Outstanding() int64 {
	return img.outstanding.Load()
}

type imageMapping struct {
	img      *Image
	buf      []byte
	released atomic.Bool
}

func (m *imageMapping) Bytes() []byte {
	return m.buf
}

func (m *imageMapping) Release() error {
	if !m.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}
	m.img.outstanding.Add(-1)
	return nil
}
