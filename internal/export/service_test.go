package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

type fakeLedger struct {
	donations []*donation.Donation
	campaigns []*donation.Campaign
	stats     donation.Stats
	err       error
}

func (f *fakeLedger) ListDonations(ctx context.Context, filter donation.ListFilter) ([]*donation.Donation, error) {
	return f.donations, f.err
}

func (f *fakeLedger) ListCampaigns(ctx context.Context, filter donation.CampaignFilter) ([]*donation.Campaign, error) {
	return f.campaigns, f.err
}

func (f *fakeLedger) ComputeStats(ctx context.Context) (donation.Stats, error) {
	return f.stats, f.err
}

func TestService_WriteCSV(t *testing.T) {
	campaignID := uuid.New()
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

	d1 := &donation.Donation{
		ID:         uuid.New(),
		DonorName:  "Ahmed Ali",
		DonorEmail: "ahmed@example.com",
		Amount:     decimal.NewFromInt(100),
		Currency:   donation.CurrencyGBP,
		Type:       donation.TypeOneTime,
		CampaignID: &campaignID,
		Message:    "In memory, with love",
		Status:     donation.StatusCompleted,
		CreatedAt:  created,
	}

	d2 := &donation.Donation{
		ID:         uuid.New(),
		DonorEmail: "fatima@example.com",
		Amount:     decimal.RequireFromString("25.5"),
		Currency:   donation.CurrencyEUR,
		Type:       donation.TypeMonthly,
		Status:     donation.StatusCompleted,
		CreatedAt:  created,
	}

	service := NewService(&fakeLedger{donations: []*donation.Donation{d1, d2}})

	var buf bytes.Buffer

	n, err := service.WriteCSV(context.Background(), &buf, donation.ListFilter{})
	if err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	if n != 2 {
		t.Fatalf("expected 2 donations written, got %d", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}

	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("unexpected header %v", records[0])
	}

	want1 := []string{d1.ID.String(), "2026-10-01T09:30:00Z", "Ahmed Ali", "ahmed@example.com", "100.00", "GBP", "one-time", campaignID.String(), "In memory, with love", "completed"}
	if strings.Join(records[1], "|") != strings.Join(want1, "|") {
		t.Errorf("row 1 = %v, want %v", records[1], want1)
	}

	if records[2][4] != "25.50" || records[2][7] != "" || records[2][6] != "monthly" {
		t.Errorf("unexpected row 2 %v", records[2])
	}
}

func TestService_WriteCSV_ListError(t *testing.T) {
	service := NewService(&fakeLedger{err: errors.New("boom")})

	var buf bytes.Buffer
	if _, err := service.WriteCSV(context.Background(), &buf, donation.ListFilter{}); err == nil {
		t.Fatal("expected error")
	}

	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %q", buf.String())
	}
}

func TestService_Summary(t *testing.T) {
	deadline := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)

	ledger := &fakeLedger{
		campaigns: []*donation.Campaign{
			{
				MemberName:    "James Djoume",
				TargetAmount:  decimal.NewFromInt(10000),
				CurrentAmount: decimal.NewFromInt(7250),
				Status:        donation.CampaignActive,
				Deadline:      &deadline,
			},
			{
				MemberName:    "Nadia Sanda",
				TargetAmount:  decimal.NewFromInt(10000),
				CurrentAmount: decimal.NewFromInt(10000),
				Status:        donation.CampaignCompleted,
			},
		},
		stats: donation.Stats{
			Count:          3,
			Total:          decimal.NewFromInt(175),
			Average:        decimal.RequireFromString("58.333"),
			DistinctDonors: 3,
		},
	}

	body, err := NewService(ledger).Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	expectedSubstrings := []string{
		"* James Djoume | active | 7250.00 / 10000.00 | 72.5% | until 2025-09-20",
		"* Nadia Sanda | completed | 10000.00 / 10000.00 | 100.0% | no deadline",
		"Donations: 3 | Total: 175.00 | Average: 58.33 | Donors: 3",
	}

	for _, sub := range expectedSubstrings {
		if !strings.Contains(body, sub) {
			t.Errorf("expected body to contain %q, got:\n%s", sub, body)
		}
	}
}
