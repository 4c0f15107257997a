package main

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the connected wallet is registered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			acct, err := opts.account()
			if err != nil {
				return err
			}
			api, err := opts.client()
			if err != nil {
				return err
			}

			registered, err := api.Status(cmd.Context(), acct.Address())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Wallet", "Registered", "Can Claim"})
			table.Append([]string{acct.Address(), strconv.FormatBool(registered), strconv.FormatBool(registered)})
			table.Render()

			if !registered {
				color.New(color.FgYellow).Fprintln(out, "Registration required before claiming.") //nolint:errcheck // terminal output
			}
			return nil
		},
	}
}
