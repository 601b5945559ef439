// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package physmem

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/linuxboot/acpid/pkg/acpi"
)

// DevMemPath is the character device exposing physical memory.
const DevMemPath = "/dev/mem"

// DevMem maps physical memory through /dev/mem.
type DevMem struct {
	f *os.File
}

var _ acpi.Physmapper = (*DevMem)(nil)

// OpenDevMem opens DevMemPath read-only.
func OpenDevMem() (*DevMem, error) {
	f, err := os.Open(DevMemPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", DevMemPath, err)
	}
	return &DevMem{f: f}, nil
}

// Close closes the device. Mappings stay valid until released.
func (d *DevMem) Close() error {
	return d.f.Close()
}

// Physmap implements acpi.Physmapper.
func (d *DevMem) Physmap(physAddr uint64, length int) (acpi.Mapping, error) {
	pageSize := uint64(unix.Getpagesize())
	start := physAddr &^ (pageSize - 1)
	delta := int(physAddr - start)

	b, err := unix.Mmap(int(d.f.Fd()), int64(start), delta+length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unable to mmap %#x+%#x: %w", physAddr, length, err)
	}
	return &devMemMapping{mapped: b, window: b[delta : delta+length]}, nil
}

type devMemMapping struct {
	once   sync.Once
	mapped []byte
	window []byte
}

func (m *devMemMapping) Bytes() []byte {
	return m.window
}

func (m *devMemMapping) Release() error {
	err := ErrAlreadyReleased
	m.once.Do(func() {
		err = unix.Munmap(m.mapped)
		m.window = nil
	})
	return err
}
