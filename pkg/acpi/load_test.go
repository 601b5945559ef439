// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acpi_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpi/acpitest"
)

const memBase = 0x100000

type mapCall struct {
	addr   uint64
	length int
}

// recordingMapper records every window requested from the wrapped mapper.
type recordingMapper struct {
	acpi.Physmapper
	calls []mapCall
}

func (m *recordingMapper) Physmap(physAddr uint64, length int) (acpi.Mapping, error) {
	m.calls = append(m.calls, mapCall{addr: physAddr, length: length})
	return m.Physmapper.Physmap(physAddr, length)
}

type failingMapper struct{}

func (failingMapper) Physmap(physAddr uint64, length int) (acpi.Mapping, error) {
	return nil, errors.New("no mapping for you")
}

type shortMapping struct{ b []byte }

func (m shortMapping) Bytes() []byte  { return m.b }
func (m shortMapping) Release() error { return nil }

type shortMapper struct{}

func (shortMapper) Physmap(physAddr uint64, length int) (acpi.Mapping, error) {
	return shortMapping{b: make([]byte, length/2)}, nil
}

func payloadOfSize(size int) []byte {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i*13 + 5)
	}
	return payload
}

func TestLoadFromPhysicalSpanningPages(t *testing.T) {
	for _, pages := range []int{1, 2, 5} {
		for _, pageOffset := range []int{0, 2000, acpi.PageSize - 1} {
			t.Run(fmt.Sprintf("pages_%d_offset_%d", pages, pageOffset), func(t *testing.T) {
				mem := acpitest.NewMemory(memBase, (pages+4)*acpi.PageSize)
				table := acpitest.Table("SSDT", "BOCHS ", "SPANNING", payloadOfSize(pages*acpi.PageSize-64-acpi.HeaderSize))
				physAddr := uint64(memBase + acpi.PageSize + pageOffset)
				mem.Place(physAddr, table)
				img := mem.Image()

				sdt, err := acpi.LoadFromPhysical(img, physAddr)
				require.NoError(t, err)

				offset := physAddr - memBase
				require.Equal(t, mem.Data[offset:offset+uint64(len(table))], sdt.Bytes())
				require.EqualValues(t, 0, img.Outstanding(), "all mappings must be released")
			})
		}
	}
}

func TestLoadFromPhysicalHeaderWindows(t *testing.T) {
	for _, tc := range []struct {
		name       string
		pageOffset int
		tableSize  int
		calls      []mapCall
	}{
		{
			name:       "header_fits_first_page",
			pageOffset: acpi.PageSize - acpi.HeaderSize,
			tableSize:  acpi.HeaderSize,
			calls:      []mapCall{{memBase, acpi.PageSize}},
		},
		{
			name:       "header_straddles_page_boundary",
			pageOffset: acpi.PageSize - acpi.HeaderSize + 1,
			tableSize:  acpi.HeaderSize,
			calls:      []mapCall{{memBase, 2 * acpi.PageSize}},
		},
		{
			name:       "table_within_mapped_bytes",
			pageOffset: 0,
			tableSize:  100,
			calls:      []mapCall{{memBase, acpi.PageSize}},
		},
		{
			name:       "several_rounds",
			pageOffset: 0,
			tableSize:  40000,
			calls: []mapCall{
				{memBase, acpi.PageSize},
				{memBase + acpi.PageSize, 4 * acpi.PageSize},
				{memBase + 5*acpi.PageSize, 4 * acpi.PageSize},
				{memBase + 9*acpi.PageSize, acpi.PageSize},
			},
		},
		{
			name:       "straddling_header_then_rounds",
			pageOffset: acpi.PageSize - 10,
			tableSize:  5 * acpi.PageSize,
			calls: []mapCall{
				{memBase, 2 * acpi.PageSize},
				{memBase + 2*acpi.PageSize, 4 * acpi.PageSize},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mem := acpitest.NewMemory(memBase, 16*acpi.PageSize)
			table := acpitest.Table("SSDT", "BOCHS ", "WINDOWS ", payloadOfSize(tc.tableSize-acpi.HeaderSize))
			physAddr := uint64(memBase + tc.pageOffset)
			mem.Place(physAddr, table)
			img := mem.Image()
			mapper := &recordingMapper{Physmapper: img}

			sdt, err := acpi.LoadFromPhysical(mapper, physAddr)
			require.NoError(t, err)
			require.Equal(t, table, sdt.Bytes())
			require.Equal(t, tc.calls, mapper.calls)
			require.EqualValues(t, 0, img.Outstanding())
		})
	}
}

func TestLoadFromPhysicalErrors(t *testing.T) {
	t.Run("mapping_fails", func(t *testing.T) {
		_, err := acpi.LoadFromPhysical(failingMapper{}, memBase)
		var loadErr *acpi.TablePhysLoadError
		require.ErrorAs(t, err, &loadErr)
		require.Equal(t, acpi.LoadErrorIO, loadErr.Kind)
		require.EqualValues(t, memBase, loadErr.PhysAddr)
	})

	t.Run("short_mapping", func(t *testing.T) {
		_, err := acpi.LoadFromPhysical(shortMapper{}, memBase)
		var loadErr *acpi.TablePhysLoadError
		require.ErrorAs(t, err, &loadErr)
		require.Equal(t, acpi.LoadErrorIO, loadErr.Kind)
	})

	t.Run("table_runs_past_memory", func(t *testing.T) {
		mem := acpitest.NewMemory(memBase, 2*acpi.PageSize)
		table := acpitest.Table("SSDT", "BOCHS ", "TOOLONG ", payloadOfSize(3*acpi.PageSize))
		mem.Place(memBase, table[:2*acpi.PageSize])
		img := mem.Image()

		_, err := acpi.LoadFromPhysical(img, memBase)
		var loadErr *acpi.TablePhysLoadError
		require.ErrorAs(t, err, &loadErr)
		require.Equal(t, acpi.LoadErrorIO, loadErr.Kind)
		require.EqualValues(t, 0, img.Outstanding())
	})

	t.Run("bad_checksum", func(t *testing.T) {
		mem := acpitest.NewMemory(memBase, 4*acpi.PageSize)
		table := acpitest.Table("SSDT", "BOCHS ", "BADSUM  ", payloadOfSize(5000))
		table[100]++
		mem.Place(memBase+10, table)

		_, err := acpi.LoadFromPhysical(mem.Image(), memBase+10)
		var loadErr *acpi.TablePhysLoadError
		require.ErrorAs(t, err, &loadErr)
		require.Equal(t, acpi.LoadErrorValidity, loadErr.Kind)
		require.ErrorIs(t, err, acpi.ErrBadChecksum)
	})

	t.Run("length_below_header", func(t *testing.T) {
		mem := acpitest.NewMemory(memBase, 2*acpi.PageSize)
		table := acpitest.Table("SSDT", "BOCHS ", "TINY    ", nil)
		table[4] = 8
		mem.Place(memBase, table)

		_, err := acpi.LoadFromPhysical(mem.Image(), memBase)
		require.ErrorIs(t, err, acpi.ErrInvalidSize)
	})
}
