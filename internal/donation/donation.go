package donation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Currency is the ISO code a donation was made in.
type Currency string

const (
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyGBP, CurrencyUSD, CurrencyEUR:
		return true
	}

	return false
}

// Type distinguishes single gifts from standing monthly ones.
type Type string

const (
	TypeOneTime Type = "one-time"
	TypeMonthly Type = "monthly"
)

func (t Type) Valid() bool {
	return t == TypeOneTime || t == TypeMonthly
}

// Status represents the payment state of a donation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// CampaignStatus represents the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Donation is a single contribution, optionally attributed to a campaign.
type Donation struct {
	ID         uuid.UUID
	DonorName  string
	DonorEmail string
	Amount     decimal.Decimal
	Currency   Currency
	Type       Type
	CampaignID *uuid.UUID // nil for general-fund donations
	Message    string
	Status     Status
	CreatedAt  time.Time
}

// Campaign is a fundraising goal for one member's case.
type Campaign struct {
	ID            uuid.UUID
	MemberName    string
	Reason        string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Status        CampaignStatus
	Deadline      *time.Time
	CreatedAt     time.Time
}

var hundred = decimal.NewFromInt(100)

// PercentageComplete is derived from the stored amounts so it can never drift
// from CurrentAmount / TargetAmount * 100.
func (c *Campaign) PercentageComplete() decimal.Decimal {
	if !c.TargetAmount.IsPositive() {
		return decimal.Zero
	}

	return c.CurrentAmount.Mul(hundred).Div(c.TargetAmount)
}

// Apply credits amount to the campaign and completes it once the target is met.
func (c *Campaign) Apply(amount decimal.Decimal) {
	c.CurrentAmount = c.CurrentAmount.Add(amount)
	c.settle()
}

// Cancel stops an active campaign. Completed campaigns stay completed.
func (c *Campaign) Cancel() error {
	switch c.Status {
	case CampaignActive:
		c.Status = CampaignCancelled
		return nil
	case CampaignCancelled:
		return nil
	}

	return ErrInvalidTransition
}

// settle moves an active campaign to completed when funded. The transition is
// one-way; cancelled campaigns keep their status.
func (c *Campaign) settle() {
	if c.Status == CampaignActive && c.CurrentAmount.GreaterThanOrEqual(c.TargetAmount) {
		c.Status = CampaignCompleted
	}
}

// Stats summarises every recorded donation.
type Stats struct {
	Count          int
	Total          decimal.Decimal
	Average        decimal.Decimal
	DistinctDonors int
}

// Totals are the raw aggregates a Repository reports for Stats.
type Totals struct {
	Count  int
	Sum    decimal.Decimal
	Donors int
}

func (t Totals) stats() Stats {
	s := Stats{
		Count:          t.Count,
		Total:          t.Sum,
		Average:        decimal.Zero,
		DistinctDonors: t.Donors,
	}

	if t.Count > 0 {
		s.Average = t.Sum.Div(decimal.NewFromInt(int64(t.Count)))
	}

	return s
}
