/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/uarch/pkg/serializer"
)

type probeResult struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Vendor   string   `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Features []string `json:"features" yaml:"features"`
}

func featuresCmd() *cli.Command {
	return &cli.Command{
		Name:  "features",
		Usage: "Print the raw CPU capabilities probed from the host",
		Description: `Print the capabilities gathered from the platform probes before
catalog matching. Useful for diagnosing why the host resolved to a
particular microarchitecture.`,
		Flags: []cli.Flag{
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

			draft, err := newDetector(cmd).Probe()
			if err != nil {
				return err
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, probeResult{
				Name:     draft.Name,
				Vendor:   draft.Vendor,
				Features: draft.Features.Sorted(),
			})
		},
	}
}
