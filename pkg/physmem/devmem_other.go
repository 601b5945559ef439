// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package physmem

import (
	"errors"

	"github.com/linuxboot/acpid/pkg/acpi"
)

// DevMemPath is the character device exposing physical memory.
const DevMemPath = "/dev/mem"

// ErrDevMemUnsupported is returned by OpenDevMem on systems without /dev/mem
// mapping support.
var ErrDevMemUnsupported = errors.New("/dev/mem mapping is only supported on linux")

// DevMem maps physical memory through /dev/mem.
type DevMem struct{}

var _ acpi.Physmapper = (*DevMem)(nil)

// OpenDevMem always fails on this platform.
func OpenDevMem() (*DevMem, error) {
	return nil, ErrDevMemUnsupported
}

// Close implements io.Closer.
func (d *DevMem) Close() error {
	return nil
}

// Physmap implements acpi.Physmapper.
func (d *DevMem) Physmap(uint64, int) (acpi.Mapping, error) {
	return nil, ErrDevMemUnsupported
}
