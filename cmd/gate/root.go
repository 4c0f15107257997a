package main

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"nftgate/internal/gate/client"
	"nftgate/internal/platform/logger"
	"nftgate/internal/wallet"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
	address  string
	key      string
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Drive the NFT storefront registration gate from a terminal",
		Long: `gate connects a wallet to the storefront API, checks whether it is
registered, submits the registration form and reports when the claim
action becomes available.

The connected wallet comes from --wallet (watch-only address) or --key
(hex private key, the address is derived from it).`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", "http://localhost:8080", "Registration API base URL")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "Per-request timeout")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.address, "wallet", "", "Wallet address to connect")
	flags.StringVar(&opts.key, "key", "", "Hex private key; the wallet address is derived from it")

	cmd.AddCommand(
		statusCmd(opts),
		registerCmd(opts),
		collectionCmd(opts),
		walletCmd(),
	)
	return cmd
}

func (o *options) client() (*client.Client, error) {
	return client.New(client.Config{BaseURL: o.apiURL, Timeout: o.timeout})
}

func (o *options) logger(w io.Writer) *slog.Logger {
	return logger.NewWithWriter(w, o.logLevel)
}

// account resolves the connected wallet from --key or --wallet.
func (o *options) account() (*wallet.Account, error) {
	switch {
	case o.key != "" && o.address != "":
		return nil, errors.New("use either --wallet or --key, not both")
	case o.key != "":
		return wallet.FromPrivateKey(o.key)
	case o.address != "":
		return wallet.FromAddress(o.address)
	default:
		return nil, errors.New("no wallet connected: pass --wallet or --key")
	}
}
