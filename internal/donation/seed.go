package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return t
}

// Seed loads the demonstration campaigns and donations into an empty ledger.
// It does nothing when any campaign already exists.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.repo.ListCampaigns(ctx, CampaignFilter{})
	if err != nil {
		return fmt.Errorf("checking existing campaigns: %w", err)
	}

	if len(existing) > 0 {
		return nil
	}

	campaigns := []CampaignParams{
		{
			MemberName:    "James Djoume",
			Reason:        "Repatriation of father",
			TargetAmount:  decimal.NewFromInt(10000),
			CurrentAmount: decimal.NewFromInt(7250),
			CreatedAt:     date("2024-11-01"),
			Deadline:      new(date("2024-12-01")),
		},
		{
			MemberName:    "Nadia Sanda",
			Reason:        "Repatriation of mother",
			TargetAmount:  decimal.NewFromInt(10000),
			CurrentAmount: decimal.NewFromInt(10000),
			CreatedAt:     date("2024-10-15"),
			Deadline:      new(date("2024-10-30")),
		},
		{
			MemberName:    "Victor Tango",
			Reason:        "Repatriation of spouse",
			TargetAmount:  decimal.NewFromInt(10000),
			CurrentAmount: decimal.NewFromInt(4500),
			CreatedAt:     date("2024-11-05"),
			Deadline:      new(date("2024-12-05")),
		},
	}

	for _, p := range campaigns {
		if _, err := s.CreateCampaign(ctx, p); err != nil {
			return fmt.Errorf("seeding campaign %q: %w", p.MemberName, err)
		}
	}

	donations := []*Donation{
		{DonorName: "Anonymous", DonorEmail: "anonymous@example.com", Amount: decimal.NewFromInt(50), Type: TypeOneTime, CreatedAt: date("2024-11-20")},
		{DonorName: "Ahmed Hassan", DonorEmail: "ahmed@example.com", Amount: decimal.NewFromInt(100), Type: TypeOneTime, CreatedAt: date("2024-11-19")},
		{DonorName: "Fatima Nkomo", DonorEmail: "fatima@example.com", Amount: decimal.NewFromInt(25), Type: TypeMonthly, CreatedAt: date("2024-11-15")},
	}

	ltx, err := s.repo.BeginLedger(ctx)
	if err != nil {
		return fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	for _, d := range donations {
		d.ID = uuid.New()
		d.Currency = CurrencyGBP
		d.Status = StatusCompleted

		if err := ltx.CreateDonation(ctx, d); err != nil {
			return fmt.Errorf("seeding donation from %s: %w", d.DonorName, err)
		}
	}

	return ltx.Commit()
}
