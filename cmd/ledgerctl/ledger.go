package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/export"
	"github.com/MrJamesThe3rd/kinship/internal/importer"
	"github.com/MrJamesThe3rd/kinship/internal/money"
)

func newDonateCmd(a *app) *cobra.Command {
	var (
		name, email, amount, currency, kind, campaign, message string
	)

	cmd := &cobra.Command{
		Use:   "donate",
		Short: "Record a donation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			params := donation.RecordParams{
				DonorName:  name,
				DonorEmail: email,
				Amount:     amt,
				Currency:   donation.Currency(strings.ToUpper(currency)),
				Type:       donation.Type(kind),
				Message:    message,
			}

			if params.Currency == "" {
				params.Currency = a.cfg.App.DefaultCurrency
			}

			if campaign != "" {
				id, err := uuid.Parse(campaign)
				if err != nil {
					return fmt.Errorf("invalid --campaign %q: %w", campaign, err)
				}

				params.CampaignID = &id
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			d, err := svc.RecordDonation(cmd.Context(), params)
			if err != nil {
				return err
			}

			target := "general fund"
			if d.CampaignID != nil {
				target = "campaign " + d.CampaignID.String()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s to %s (%s)\n",
				money.Format(d.Amount, string(d.Currency)), d.Type, target, d.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "donor name")
	cmd.Flags().StringVar(&email, "email", "", "donor email")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 25 or 12.50")
	cmd.Flags().StringVar(&currency, "currency", "", "GBP, USD or EUR (default from DEFAULT_CURRENCY)")
	cmd.Flags().StringVar(&kind, "type", string(donation.TypeOneTime), "one-time or monthly")
	cmd.Flags().StringVar(&campaign, "campaign", "", "campaign id to credit")
	cmd.Flags().StringVar(&message, "message", "", "message from the donor")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Record every valid line of a donations CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			res, err := importer.NewService(svc, a.cfg.App.DefaultCurrency).Import(cmd.Context(), f)
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "read as %s: %d recorded, %d skipped\n", res.Charset, len(res.Recorded), len(res.Skipped))

				for _, s := range res.Skipped {
					fmt.Fprintf(out, "  skipped %v\n", s)
				}
			}

			return err
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output   string
		campaign string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write donations as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := donation.ListFilter{}

			if campaign != "" {
				id, err := uuid.Parse(campaign)
				if err != nil {
					return fmt.Errorf("invalid --campaign %q: %w", campaign, err)
				}

				filter.CampaignID = &id
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()

				w = f
			}

			n, err := export.NewService(svc).WriteCSV(cmd.Context(), w, filter)
			if err != nil {
				return err
			}

			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d donations to %s\n", n, output)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	cmd.Flags().StringVar(&campaign, "campaign", "", "only donations credited to this campaign")

	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print campaign progress and ledger totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			body, err := export.NewService(svc).Summary(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), body)

			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print donation count, total, average and distinct donors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			stats, err := svc.ComputeStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "count:   %d\n", stats.Count)
			fmt.Fprintf(out, "total:   %s\n", money.Plain(stats.Total))
			fmt.Fprintf(out, "average: %s\n", money.Plain(stats.Average))
			fmt.Fprintf(out, "donors:  %d\n", stats.DistinctDonors)

			return nil
		},
	}
}
