// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package list

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/linuxboot/acpid/cmds/acpitool/commands"
	"github.com/linuxboot/acpid/pkg/acpi"
	"github.com/linuxboot/acpid/pkg/acpifs"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	Source commands.Source `group:"Memory source"`
	Format *string         `long:"format" description:"output format [text, json]"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "lists the tables"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return "Loads the tables referenced by the root table and lists them with their handle and name.\n" +
		"The name is what dump and show expect with -t."
}

// Entry is a row of the listing.
type Entry struct {
	Handle      int
	Name        string
	Tag         string
	OEMID       string
	OEMTableID  string
	Revision    uint8
	OEMRevision uint32
	Length      uint32
}

// Entries returns the listing of the tables in ctx, in store order.
func Entries(ctx *acpi.Context) ([]Entry, error) {
	srv := acpifs.NewServer(ctx)
	names := srv.List()

	entries := make([]Entry, 0, len(names))
	for i, sdt := range ctx.Tables() {
		sig := sdt.Signature()
		handle, err := srv.Handle(sig)
		if err != nil {
			return nil, err
		}
		hdr := sdt.Header()
		entries = append(entries, Entry{
			Handle:      handle,
			Name:        names[i],
			Tag:         sig.Tag(),
			OEMID:       strings.TrimRight(string(sig.OEMID[:]), " \x00"),
			OEMTableID:  strings.TrimRight(string(sig.OEMTableID[:]), " \x00"),
			Revision:    hdr.Revision,
			OEMRevision: hdr.OEMRevision,
			Length:      hdr.Length,
		})
	}
	return entries, nil
}

// Render writes entries to w in the given format.
func Render(w io.Writer, entries []Entry, format commands.Format) error {
	switch format {
	case commands.FormatJSON:
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case commands.FormatText:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("ACPI tables")
		t.AppendHeader(table.Row{"Handle", "Tag", "OEM ID", "OEM Table ID", "Rev", "OEM Rev", "Length", "Name"})
		for _, entry := range entries {
			t.AppendRow(table.Row{
				entry.Handle,
				entry.Tag,
				entry.OEMID,
				entry.OEMTableID,
				entry.Revision,
				fmt.Sprintf("0x%x", entry.OEMRevision),
				fmt.Sprintf("0x%x (%s)", entry.Length, humanize.IBytes(uint64(entry.Length))),
				entry.Name,
			})
		}
		t.Render()
		return nil
	}
	return commands.ErrArgs{Err: fmt.Errorf("unsupported format %d", format)}
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if len(args) != 0 {
		return commands.ErrArgs{Err: fmt.Errorf("there are extra arguments")}
	}

	format, err := commands.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}

	ctx, err := cmd.Source.Context()
	if err != nil {
		return err
	}

	entries, err := Entries(ctx)
	if err != nil {
		return fmt.Errorf("unable to list the tables: %w", err)
	}
	return Render(os.Stdout, entries, format)
}
