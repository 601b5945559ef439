// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physmem

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImagePhysmap(t *testing.T) {
	data := make([]byte, 0x3000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	img := NewImage(0x10000, bytes.NewReader(data), int64(len(data)))

	m, err := img.Physmap(0x11000, 0x1000)
	require.NoError(t, err)
	require.Equal(t, data[0x1000:0x2000], m.Bytes())
	require.EqualValues(t, 1, img.Outstanding())

	require.NoError(t, m.Release())
	require.EqualValues(t, 0, img.Outstanding())
	require.ErrorIs(t, m.Release(), ErrAlreadyReleased)
	require.EqualValues(t, 0, img.Outstanding())
}

func TestImagePhysmapOutOfRange(t *testing.T) {
	img := NewImage(0x10000, bytes.NewReader(make([]byte, 0x2000)), 0x2000)

	for _, tc := range []struct {
		name   string
		addr   uint64
		length int
	}{
		{"below_base", 0xf000, 0x1000},
		{"past_end", 0x11000, 0x1001},
		{"far_past_end", 0x20000, 1},
		{"negative_length", 0x10000, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := img.Physmap(tc.addr, tc.length)
			require.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)
		})
	}
	require.EqualValues(t, 0, img.Outstanding())

	m, err := img.Physmap(0x10000, 0x2000)
	require.NoError(t, err)
	require.Len(t, m.Bytes(), 0x2000)
	require.NoError(t, m.Release())
}

func TestOpenImageFile(t *testing.T) {
	data := []byte("RSD PTR physical memory dump")
	path := filepath.Join(t.TempDir(), "mem.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	img, f, err := OpenImageFile(path, 0xe0000)
	require.NoError(t, err)
	defer f.Close()
	require.EqualValues(t, len(data), img.Size)

	m, err := img.Physmap(0xe0004, 3)
	require.NoError(t, err)
	require.Equal(t, []byte("PTR"), m.Bytes())
	require.NoError(t, m.Release())

	_, _, err = OpenImageFile(filepath.Join(t.TempDir(), "missing"), 0)
	require.Error(t, err)
}
