package main

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func collectionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "collection",
		Short: "Show the collection metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			info, err := api.Collection(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintf(out, "\n=== %s ===\n", info.Name) //nolint:errcheck // terminal output
			if info.Description != "" {
				color.New(color.FgWhite).Fprintln(out, info.Description) //nolint:errcheck // terminal output
			}

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Field", "Value"})
			table.Append([]string{"Chain", info.Chain})
			table.Append([]string{"Contract", orDash(info.ContractAddress)})
			table.Append([]string{"Explorer", orDash(info.ExplorerURL)})
			table.Append([]string{"Image", orDash(info.Image)})
			table.Append([]string{"Claim price", info.ClaimPrice})
			if info.MaxSupply > 0 {
				table.Append([]string{"Max supply", strconv.FormatUint(info.MaxSupply, 10)})
			}
			if info.RoyaltyPercent != "" {
				table.Append([]string{"Royalties", info.RoyaltyPercent})
			}
			table.Render()
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
