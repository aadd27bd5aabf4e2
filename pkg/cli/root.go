/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/uarch/pkg/logging"
	"github.com/mchmarny/uarch/pkg/serializer"
)

const name = "uarch"

// overridden during build with ldflags
var version = "dev"

// Flag instances hold parse state, so every command gets its own copies.
func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("Output format, one of: %v", serializer.SupportedFormats()),
		Value:   string(serializer.FormatJSON),
	}
}

func archFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "arch",
		Usage: "Override architecture resolution (e.g. x86_64, aarch64)",
	}
}

func osFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "os",
		Usage: "Override operating system resolution (e.g. linux, darwin)",
	}
}

// Command builds the root command with all subcommands attached.
func Command(buildVersion string) *cli.Command {
	if buildVersion != "" {
		version = buildVersion
	}
	return &cli.Command{
		Name:                  name,
		Version:               version,
		EnableShellCompletion: true,
		Usage:                 "Identify the CPU microarchitecture of the host machine",
		Description: `uarch matches the host CPU against a catalog of known
microarchitectures and reports the most specific entry the host is provably
compatible with. Consumers use the result to pick optimal code paths or
compiler flags.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			hostCmd(),
			listCmd(),
			featuresCmd(),
		},
	}
}

// Run executes the CLI with the given arguments.
func Run(ctx context.Context, args []string, buildVersion string) error {
	return Command(buildVersion).Run(ctx, args)
}
