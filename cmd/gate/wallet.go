package main

import (
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"nftgate/internal/wallet"
)

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Local development wallets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Generate a throwaway wallet for testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			acct, err := wallet.Generate()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Address", "Private Key"})
			table.Append([]string{acct.Address(), acct.PrivateKeyHex()})
			table.Render()
			color.New(color.FgYellow).Fprintln(out, "Development only: never fund this key.") //nolint:errcheck // terminal output
			return nil
		},
	})
	return cmd
}
