package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kinship/internal/bootstrap"
	"github.com/MrJamesThe3rd/kinship/internal/config"
	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

type opener func(ctx context.Context) (*bootstrap.Ledger, error)

// app holds what the subcommands share. The ledger is opened on first use so
// commands like token work without a database.
type app struct {
	cfg    *config.Config
	open   opener
	ledger *bootstrap.Ledger
}

func (a *app) service(ctx context.Context) (*donation.Service, error) {
	if a.ledger == nil {
		l, err := a.open(ctx)
		if err != nil {
			return nil, err
		}

		a.ledger = l
	}

	return a.ledger.Service, nil
}

func (a *app) close() error {
	if a.ledger == nil {
		return nil
	}

	err := a.ledger.Close()
	a.ledger = nil

	return err
}

// execute runs root and closes the ledger afterwards. Cobra skips post-run
// hooks when a command fails, so the close cannot live in one.
func (a *app) execute(ctx context.Context, root *cobra.Command) (err error) {
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing ledger: %w", cerr)
		}
	}()

	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Administer the kinship contribution ledger",
		Long: `ledgerctl manages campaigns and donations directly against the configured store.

With STORE=memory every invocation starts from a fresh (optionally seeded)
ledger, which is useful for trying commands out.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newCampaignCmd(a),
		newDonateCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newSummaryCmd(a),
		newStatsCmd(a),
		newTokenCmd(a),
	)

	return root
}
