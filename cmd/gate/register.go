package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nftgate/internal/gate"
	"nftgate/internal/gate/client"
)

func registerCmd(opts *options) *cobra.Command {
	var (
		form  gate.Form
		claim bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Connect the wallet, check its status and register it if needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			acct, err := opts.account()
			if err != nil {
				return err
			}
			api, err := opts.client()
			if err != nil {
				return err
			}
			out := &syncWriter{w: cmd.OutOrStdout()}

			g := gate.New(api,
				gate.WithLogger(opts.logger(cmd.ErrOrStderr())),
				gate.WithRequestTimeout(opts.timeout),
				gate.WithClaimer(&previewClaimer{api: api, out: out}),
				gate.WithObserver(printTransition(out)),
			)
			defer g.Close()

			return runRegistration(cmd.Context(), g, acct.Address(), form, claim, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.Name, "name", "", "Full name")
	flags.StringVar(&form.DOB, "dob", "", "Date of birth (YYYY-MM-DD)")
	flags.StringVar(&form.Gender, "gender", "", "Gender (male, female, other)")
	flags.StringVar(&form.MaritalStatus, "marital-status", "", "Marital status (single, married, divorced, widowed)")
	flags.BoolVar(&claim, "claim", false, "Preview the claim once the wallet is registered")
	return cmd
}

func runRegistration(ctx context.Context, g *gate.Gate, address string, form gate.Form, claim bool, out io.Writer) error {
	if err := g.Connect(address); err != nil {
		return err
	}
	st, err := g.Await(ctx, gate.NeedsRegistration, gate.Registered, gate.Error)
	if err != nil {
		return err
	}

	if st.Phase == gate.Error {
		return errors.New(st.Message)
	}

	if st.Phase == gate.NeedsRegistration {
		var formErr *gate.FormError
		if err := g.Submit(form); errors.As(err, &formErr) {
			printFieldErrors(out, formErr.Fields)
			return errors.New("registration form is incomplete")
		} else if err != nil {
			return err
		}

		st, err = g.Await(ctx, gate.Registered, gate.NeedsRegistration)
		if err != nil {
			return err
		}
		if st.Phase != gate.Registered {
			return errors.New(st.Message)
		}
	}

	color.New(color.FgGreen).Fprintf(out, "%s is registered.\n", st.Wallet) //nolint:errcheck // terminal output
	if claim {
		return g.Claim(ctx)
	}
	return nil
}

func printTransition(out io.Writer) gate.Observer {
	return func(t gate.Transition) {
		line := fmt.Sprintf("%-18s -> %-18s (%s)", t.From, t.To, t.Cause)
		if t.State.Message != "" {
			line += ": " + t.State.Message
		}
		fmt.Fprintln(out, line) //nolint:errcheck // terminal output
	}
}

func printFieldErrors(out io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	red := color.New(color.FgRed)
	for _, name := range names {
		red.Fprintf(out, "  %s: %s\n", name, fields[name]) //nolint:errcheck // terminal output
	}
}

// previewClaimer reports what a claim would cost; it sends no transaction.
type previewClaimer struct {
	api *client.Client
	out io.Writer
}

func (c *previewClaimer) Claim(ctx context.Context, walletAddress string) error {
	info, err := c.api.Collection(ctx)
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	name := info.Name
	if name == "" {
		name = "the collection"
	}
	color.New(color.FgCyan).Fprintf(c.out, "Claim available: %s can mint from %s for %s.\n", walletAddress, name, info.ClaimPrice) //nolint:errcheck // terminal output
	return nil
}

// syncWriter serializes writes from the gate goroutine and the command.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
