package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/money"
)

// Ledger is the read side of the donation service used for exports.
type Ledger interface {
	ListDonations(ctx context.Context, filter donation.ListFilter) ([]*donation.Donation, error)
	ListCampaigns(ctx context.Context, filter donation.CampaignFilter) ([]*donation.Campaign, error)
	ComputeStats(ctx context.Context) (donation.Stats, error)
}

// Service handles the export of donations and campaign summaries.
type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

// csvHeader uses the column names the importer understands, so an export can
// be imported into another ledger.
var csvHeader = []string{"id", "created_at", "name", "email", "amount", "currency", "type", "campaign", "message", "status"}

// WriteCSV writes the donations matching filter to w in insertion order and
// returns how many were written.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, filter donation.ListFilter) (int, error) {
	donations, err := s.ledger.ListDonations(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing donations: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, d := range donations {
		campaign := ""
		if d.CampaignID != nil {
			campaign = d.CampaignID.String()
		}

		record := []string{
			d.ID.String(),
			d.CreatedAt.UTC().Format(time.RFC3339),
			d.DonorName,
			d.DonorEmail,
			money.Plain(d.Amount),
			string(d.Currency),
			string(d.Type),
			campaign,
			d.Message,
			string(d.Status),
		}

		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing donation %s: %w", d.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(donations), nil
}

// Summary renders every campaign's progress followed by the ledger totals.
func (s *Service) Summary(ctx context.Context) (string, error) {
	campaigns, err := s.ledger.ListCampaigns(ctx, donation.CampaignFilter{})
	if err != nil {
		return "", fmt.Errorf("listing campaigns: %w", err)
	}

	stats, err := s.ledger.ComputeStats(ctx)
	if err != nil {
		return "", fmt.Errorf("computing stats: %w", err)
	}

	return GenerateSummary(campaigns, stats), nil
}

func GenerateSummary(campaigns []*donation.Campaign, stats donation.Stats) string {
	var sb strings.Builder

	for _, c := range campaigns {
		deadline := "no deadline"
		if c.Deadline != nil {
			deadline = "until " + c.Deadline.Format("2006-01-02")
		}

		fmt.Fprintf(&sb, "* %s | %s | %s / %s | %s%% | %s\n",
			c.MemberName,
			c.Status,
			money.Plain(c.CurrentAmount),
			money.Plain(c.TargetAmount),
			c.PercentageComplete().StringFixed(1),
			deadline,
		)
	}

	fmt.Fprintf(&sb, "\nDonations: %d | Total: %s | Average: %s | Donors: %d\n",
		stats.Count,
		money.Plain(stats.Total),
		money.Plain(stats.Average),
		stats.DistinctDonors,
	)

	return sb.String()
}
