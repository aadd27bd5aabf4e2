/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/mchmarny/uarch/pkg/serializer"
	"github.com/mchmarny/uarch/pkg/target"
)

type listEntry struct {
	Name     string   `json:"name" yaml:"name"`
	Vendor   string   `json:"vendor" yaml:"vendor"`
	Family   string   `json:"family" yaml:"family"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the known microarchitectures",
		Description: `List every microarchitecture in the catalog, optionally limited
to a single family.

# Examples

All known targets:
  uarch list

Only the aarch64 family:
  uarch list --family aarch64`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "family",
				Usage: "Limit output to one architecture family (e.g. x86_64)",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			known, err := target.Known()
			if err != nil {
				return err
			}

			family := cmd.String("family")
			entries := make([]listEntry, 0, len(known))
			for _, m := range known {
				if family != "" && m.Family().Name != family {
					continue
				}
				entries = append(entries, listEntry{
					Name:     m.Name,
					Vendor:   m.Vendor,
					Family:   m.Family().Name,
					Features: m.AllFeatures().Sorted(),
				})
			}
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].Family != entries[j].Family {
					return entries[i].Family < entries[j].Family
				}
				return entries[i].Name < entries[j].Name
			})

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, entries)
		},
	}
}
