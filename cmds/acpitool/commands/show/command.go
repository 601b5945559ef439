// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package show

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/linuxboot/acpid/cmds/acpitool/commands"
	"github.com/linuxboot/acpid/pkg/acpi"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	Source commands.Source `group:"Memory source"`
	Table  *string         `short:"t" long:"table" description:"show only this table (name as printed by list, or a tag matching a single table)"`
	Spew   bool            `long:"spew" description:"dump the decoded structures instead of summaries"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "prints the decoded tables"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return "Prints the header of every table, the fixed part of the FADT and the size of the AML\n" +
		"carried by the DSDT and the SSDTs."
}

// Show writes the description of sdt to w.
func Show(w io.Writer, ctx *acpi.Context, sdt *acpi.Sdt, useSpew bool) {
	var fadt *acpi.Fadt
	if f := ctx.Fadt(); f != nil && f.Sdt() == sdt {
		fadt = f
	}

	if useSpew {
		cfg := spew.ConfigState{Indent: "  ", DisableMethods: true, DisablePointerAddresses: true}
		cfg.Fdump(w, sdt.Header())
		if fadt != nil {
			cfg.Fdump(w, fadt.Fixed())
			if ext, ok := fadt.Acpi2Struct(); ok {
				cfg.Fdump(w, *ext)
			}
		}
		return
	}

	if fadt != nil {
		fmt.Fprint(w, fadt.Summary())
	} else {
		fmt.Fprint(w, sdt.Summary())
	}
	if table, ok := acpi.TryNewAmlTable(sdt); ok {
		fmt.Fprintf(w, "AML              : %d bytes\n", len(table.AML()))
	}
	fmt.Fprintln(w)
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("there are extra arguments")}
	}

	ctx, err := cmd.Source.Context()
	if err != nil {
		return err
	}

	if cmd.Table != nil {
		sig, err := commands.LookupSignature(ctx, *cmd.Table)
		if err != nil {
			return commands.ErrArgs{Err: err}
		}
		sdt := ctx.SdtFromSignature(sig)
		if sdt == nil {
			return fmt.Errorf("no table %s", sig)
		}
		Show(os.Stdout, ctx, sdt, cmd.Spew)
		return nil
	}

	for _, sdt := range ctx.Tables() {
		Show(os.Stdout, ctx, sdt, cmd.Spew)
	}
	return nil
}
