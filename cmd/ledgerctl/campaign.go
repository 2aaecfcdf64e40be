package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/money"
)

func newCampaignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "List, create and cancel campaigns",
	}

	cmd.AddCommand(newCampaignListCmd(a), newCampaignCreateCmd(a), newCampaignCancelCmd(a))

	return cmd
}

func newCampaignListCmd(a *app) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			var cs []*donation.Campaign
			if activeOnly {
				cs, err = svc.ListActiveCampaigns(cmd.Context())
			} else {
				cs, err = svc.ListCampaigns(cmd.Context(), donation.CampaignFilter{})
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), campaignTable(cs))

			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only campaigns still accepting donations")

	return cmd
}

func campaignTable(cs []*donation.Campaign) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Member", "Status", "Raised", "Target", "%")

	for _, c := range cs {
		t.Row(
			c.ID.String(),
			c.MemberName,
			string(c.Status),
			money.Plain(c.CurrentAmount),
			money.Plain(c.TargetAmount),
			c.PercentageComplete().StringFixed(1),
		)
	}

	return t.String()
}

func newCampaignCreateCmd(a *app) *cobra.Command {
	var (
		member, reason, target, current, deadline string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a campaign for a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := donation.CampaignParams{MemberName: member, Reason: reason}

			var err error

			if params.TargetAmount, err = decimal.NewFromString(target); err != nil {
				return fmt.Errorf("invalid --target %q: %w", target, err)
			}

			if current != "" {
				if params.CurrentAmount, err = decimal.NewFromString(current); err != nil {
					return fmt.Errorf("invalid --current %q: %w", current, err)
				}
			}

			if deadline != "" {
				d, err := time.Parse(time.DateOnly, deadline)
				if err != nil {
					return fmt.Errorf("invalid --deadline %q: %w", deadline, err)
				}

				params.Deadline = &d
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			c, err := svc.CreateCampaign(cmd.Context(), params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created campaign %s (%s)\n", c.ID, c.Status)

			return nil
		},
	}

	cmd.Flags().StringVar(&member, "member", "", "member the campaign supports")
	cmd.Flags().StringVar(&reason, "reason", "", "why the funds are needed")
	cmd.Flags().StringVar(&target, "target", "", "target amount")
	cmd.Flags().StringVar(&current, "current", "", "amount already raised")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func newCampaignCancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Stop an active campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid campaign id %q: %w", args[0], err)
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			c, err := svc.CancelCampaign(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "campaign %s is %s\n", c.ID, c.Status)

			return nil
		},
	}
}
