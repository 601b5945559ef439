// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acpifs serves the tables of an acpi.Context to clients: table
// names, sizes and raw bytes, addressed by signature or by handle.
package acpifs

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/check"
)

// Errors returned by Server.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidName   = errors.New("invalid table name")
)

// Server answers length, read and list requests against a context built
// beforehand. The context is shared, not owned.
type Server struct {
	ctx *acpi.Context
}

// NewServer returns a server for ctx.
func NewServer(ctx *acpi.Context) *Server {
	return &Server{ctx: ctx}
}

func (s *Server) lookup(sig acpi.SdtSignature) (*acpi.Sdt, error) {
	sdt := s.ctx.SdtFromSignature(sig)
	if sdt == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, sig)
	}
	return sdt, nil
}

// Length returns the size of the table, header included.
func (s *Server) Length(sig acpi.SdtSignature) (int, error) {
	sdt, err := s.lookup(sig)
	if err != nil {
		return 0, err
	}
	return sdt.Len(), nil
}

// Read returns up to n bytes of the table starting at offset. The header is
// part of the table; reads are clamped at the end of the table and an offset
// past the end yields no bytes.
func (s *Server) Read(sig acpi.SdtSignature, offset, n int) ([]byte, error) {
	sdt, err := s.lookup(sig)
	if err != nil {
		return nil, err
	}
	raw := sdt.Bytes()

	start := min(offset, len(raw))
	end := start + min(n, len(raw)-start)
	if err := check.BytesRange(len(raw), start, end); err != nil {
		return nil, fmt.Errorf("invalid read of %d bytes at %d from %s: %w", n, offset, sig, err)
	}

	out := make([]byte, end-start)
	copy(out, raw[start:end])
	return out, nil
}

// Name renders sig as "TAG-<OEM id hex>-<OEM table id hex>".
func Name(sig acpi.SdtSignature) string {
	return fmt.Sprintf("%s-%s-%s",
		sig.Signature[:],
		hex.EncodeToString(sig.OEMID[:]),
		hex.EncodeToString(sig.OEMTableID[:]),
	)
}

// ParseName is the inverse of Name.
func ParseName(name string) (acpi.SdtSignature, error) {
	var sig acpi.SdtSignature
	parts := strings.Split(name, "-")
	if len(parts) != 3 || len(parts[0]) != len(sig.Signature) {
		return sig, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	copy(sig.Signature[:], parts[0])

	for _, field := range []struct {
		dst []byte
		src string
	}{
		{sig.OEMID[:], parts[1]},
		{sig.OEMTableID[:], parts[2]},
	} {
		b, err := hex.DecodeString(field.src)
		if err != nil || len(b) != len(field.dst) {
			return acpi.SdtSignature{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		copy(field.dst, b)
	}
	return sig, nil
}

// List returns the names of all tables, in store order.
func (s *Server) List() []string {
	tables := s.ctx.Tables()
	names := make([]string, 0, len(tables))
	for _, sdt := range tables {
		names = append(names, Name(sdt.Signature()))
	}
	return names
}

// Handle returns the most recent handle registered for sig.
func (s *Server) Handle(sig acpi.SdtSignature) (int, error) {
	idx, ok := s.ctx.GetIndexFromSignature(sig)
	if !ok {
		return -1, fmt.Errorf("%w: no handle for %s", ErrTableNotFound, sig)
	}
	return idx, nil
}

// SignatureFromHandle resolves a handle returned by Handle.
func (s *Server) SignatureFromHandle(handle int) (acpi.SdtSignature, error) {
	sig, ok := s.ctx.GetSignatureFromIndex(handle)
	if !ok {
		return sig, fmt.Errorf("%w: no table for handle %d", ErrTableNotFound, handle)
	}
	return sig, nil
}
