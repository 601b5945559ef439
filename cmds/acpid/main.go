// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// acpid discovers the ACPI tables once at startup and serves them.
//
// Synopsis:
//     acpid --root ADDR [--image FILE --base ADDR] [--export DIR]
//
// Without --image physical memory is mapped from /dev/mem. With --export
// every table is also written to DIR, one file per table named after the
// table name.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpifs"
	"github.com/linuxboot/acpid/pkg/log"
	"github.com/linuxboot/acpid/pkg/physmem"
)

var (
	root      = flag.Uint64P("root", "r", 0, "physical address of the RSDT or XSDT")
	imagePath = flag.StringP("image", "i", "", "raw dump of physical memory to read instead of /dev/mem")
	imageBase = flag.Uint64("base", 0, "physical address of the first byte of --image")
	exportDir = flag.StringP("export", "e", "", "write every table to this directory")
	logLevel  = flag.String("log-level", "info", "least severe messages to log [error, warn, info]")
)

func openPhysmapper() (acpi.Physmapper, func() error, error) {
	if *imagePath != "" {
		img, f, err := physmem.OpenImageFile(*imagePath, *imageBase)
		if err != nil {
			return nil, nil, err
		}
		return img, f.Close, nil
	}
	devMem, err := physmem.OpenDevMem()
	if err != nil {
		return nil, nil, err
	}
	return devMem, devMem.Close, nil
}

func export(srv *acpifs.Server, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range srv.List() {
		sig, err := acpifs.ParseName(name)
		if err != nil {
			return err
		}
		n, err := srv.Length(sig)
		if err != nil {
			return err
		}
		b, err := srv.Read(sig, 0, n)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name+".dat"), b, 0o644); err != nil {
			return fmt.Errorf("unable to export %s: %w", sig, err)
		}
	}
	return nil
}

func main() {
	flag.Parse()

	if *root == 0 || flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.DefaultLogger = log.NewLogger(os.Stderr, level)

	m, closePhysmapper, err := openPhysmapper()
	if err != nil {
		log.Fatalf("%v", err)
	}

	addrs, err := acpi.LoadRootTable(m, *root)
	if err != nil {
		log.Fatalf("unable to load the root table: %v", err)
	}
	ctx, err := acpi.NewContext(m, addrs)
	if err != nil {
		log.Fatalf("failed to load tables referenced by the root table: %v", err)
	}
	if err := closePhysmapper(); err != nil {
		log.Warnf("unable to close physical memory: %v", err)
	}

	srv := acpifs.NewServer(ctx)
	for _, name := range srv.List() {
		sig, err := acpifs.ParseName(name)
		if err != nil {
			log.Fatalf("%v", err)
		}
		handle, err := srv.Handle(sig)
		if err != nil {
			log.Fatalf("%v", err)
		}
		n, _ := srv.Length(sig)
		log.Infof("handle %d: %s (%d bytes)", handle, name, n)
	}

	if *exportDir != "" {
		if err := export(srv, *exportDir); err != nil {
			log.Fatalf("%v", err)
		}
	}
}
