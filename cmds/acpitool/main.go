// Copyright 2024 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// acpitool discovers the ACPI System Description Tables from physical memory
// and prints or extracts them.
//
// The tables are reached from the root table (RSDT or XSDT) whose physical
// address is given with --root, either on the live system through /dev/mem
// or in a raw dump of physical memory.
//
// Synopsis:
//     acpitool list --root ADDR (--devmem | --image FILE --base ADDR) [--format=json]
//     acpitool dump --root ADDR (--devmem | --image FILE --base ADDR) -t NAME [-o FILE] [--offset N] [--size N]
//     acpitool show --root ADDR (--devmem | --image FILE --base ADDR) [-t NAME] [--spew]
//
// An example:
//     acpitool list --devmem --root 0x7fe0100
//     acpitool dump --devmem --root 0x7fe0100 -t DSDT -o dsdt.aml
//     acpitool show --image mem.bin --base 0x7fe0000 --root 0x7fe0100 -t FACP
//
// Description:
//     list: Lists the tables with their handles and names
//     dump: Writes the raw bytes of a table
//     show: Prints the decoded headers, the FADT and the AML sizes
//
// Discovery progress is logged to stderr with --log-level=info.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/linuxboot/acpid/cmds/acpitool/commands"
	"github.com/linuxboot/acpid/cmds/acpitool/commands/dump"
	"github.com/linuxboot/acpid/cmds/acpitool/commands/list"
	"github.com/linuxboot/acpid/cmds/acpitool/commands/show"
	"github.com/linuxboot/acpid/pkg/log"
)

// options are shared by all the verbs.
type options struct {
	LogLevel string `long:"log-level" default:"warn" choice:"error" choice:"warn" choice:"info" description:"least severe messages to log"`
}

var (
	knownCommands = map[string]commands.Command{
		"list": &list.Command{},
		"dump": &dump.Command{},
		"show": &show.Command{},
	}
)

func main() {
	var opts options
	flagsParser := flags.NewParser(&opts, flags.Default)
	flagsParser.CommandHandler = func(command flags.Commander, args []string) error {
		level, err := log.ParseLevel(opts.LogLevel)
		if err != nil {
			return commands.ErrArgs{Err: err}
		}
		log.DefaultLogger = log.NewLogger(os.Stderr, level)
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}
	for commandName, command := range knownCommands {
		_, err := flagsParser.AddCommand(commandName, command.ShortDescription(), command.LongDescription(), command)
		if err != nil {
			panic(err)
		}
	}

	// parse arguments and execute the appropriate command
	if _, err := flagsParser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		log.Fatalf("%v", err)
	}
}
