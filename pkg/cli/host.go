/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/uarch/pkg/detect"
	"github.com/mchmarny/uarch/pkg/report"
	"github.com/mchmarny/uarch/pkg/serializer"
)

func hostCmd() *cli.Command {
	return &cli.Command{
		Name:  "host",
		Usage: "Resolve the host microarchitecture",
		Description: `Resolve the most specific known microarchitecture the host is
compatible with and print a detection report.

# Examples

Print only the resolved name:
  uarch host --quiet

Full report as YAML:
  uarch host --format yaml

Write the report to a file:
  uarch host --output host.json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Print only the resolved microarchitecture name",
			},
			outputFlag(),
			formatFlag(),
			archFlag(),
			osFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			resolved, err := newDetector(cmd).Detect()
			if err != nil {
				return err
			}

			if cmd.Bool("quiet") {
				fmt.Fprintln(cmd.Root().Writer, resolved.Name)
				return nil
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, report.New(resolved, version))
		},
	}
}

// newDetector builds a detector honoring the architecture and OS override
// flags shared by the probing commands.
func newDetector(cmd *cli.Command) *detect.Detector {
	var opts []detect.Option
	if arch := cmd.String("arch"); arch != "" {
		opts = append(opts, detect.WithTargetArch(arch))
	}
	if osName := cmd.String("os"); osName != "" {
		opts = append(opts, detect.WithTargetOS(osName))
	}
	return detect.New(opts...)
}
