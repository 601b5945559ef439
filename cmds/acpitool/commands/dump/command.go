// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dump

import (
	"fmt"
	"io"
	"os"

	"github.com/linuxboot/acpid/cmds/acpitool/commands"
	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpifs"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	Source     commands.Source `group:"Memory source"`
	Table      string          `short:"t" long:"table" description:"table name as printed by list, or a tag matching a single table" required:"true"`
	OutputPath string          `short:"o" long:"output" description:"write the bytes to this file instead of stdout"`
	Offset     int             `long:"offset" description:"offset of the first byte to dump, the header starts at 0"`
	Size       *int            `long:"size" description:"amount of bytes to dump [default: up to the end of the table]"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "dumps the raw bytes of a table"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return ""
}

// Dump writes size bytes of the table sig starting at offset to w. A nil
// size dumps up to the end of the table.
func Dump(w io.Writer, srv *acpifs.Server, sig acpi.SdtSignature, offset int, size *int) error {
	n, err := srv.Length(sig)
	if err != nil {
		return err
	}
	if size != nil {
		n = *size
	}

	b, err := srv.Read(sig, offset, n)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("there are extra arguments")}
	}
	if cmd.Offset < 0 || (cmd.Size != nil && *cmd.Size < 0) {
		return commands.ErrArgs{Err: fmt.Errorf("offset and size cannot be negative")}
	}

	ctx, err := cmd.Source.Context()
	if err != nil {
		return err
	}
	sig, err := commands.LookupSignature(ctx, cmd.Table)
	if err != nil {
		return commands.ErrArgs{Err: err}
	}

	var w io.Writer = os.Stdout
	if cmd.OutputPath != "" {
		f, err := os.Create(cmd.OutputPath)
		if err != nil {
			return fmt.Errorf("unable to create '%s': %w", cmd.OutputPath, err)
		}
		defer f.Close()
		w = f
	}

	if err := Dump(w, acpifs.NewServer(ctx), sig, cmd.Offset, cmd.Size); err != nil {
		return fmt.Errorf("unable to dump %s: %w", sig, err)
	}
	return nil
}
