// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/evbus/internal/config"
	"github.com/ManuGH/evbus/internal/version"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:])
	case "validate":
		return runConfigValidate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  evbusd config init [--force] <path>")
	fmt.Fprintln(os.Stderr, "  evbusd config validate <path>")
}

func runConfigInit(args []string) int {
	fs := flag.NewFlagSet("evbusd config init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		printConfigUsage()
		return 2
	}
	path := fs.Arg(0)

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
		return 1
	}
	if err := config.WriteFile(path, config.Defaults()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("wrote default configuration to %s\n", path)
	return 0
}

func runConfigValidate(args []string) int {
	if len(args) != 1 {
		printConfigUsage()
		return 2
	}
	if _, err := config.NewLoader(args[0], version.Version).Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", args[0], err)
		return 1
	}
	fmt.Printf("%s is valid\n", args[0])
	return 0
}
