package donation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=donation
type Repository interface {
	GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error)
	ListDonations(ctx context.Context, filter ListFilter) ([]*Donation, error)
	Totals(ctx context.Context) (Totals, error)

	GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]*Campaign, error)
	CreateCampaign(ctx context.Context, c *Campaign) error

	BeginLedger(ctx context.Context) (LedgerTx, error)
}

// LedgerTx serialises writes that touch a campaign's running total. A campaign
// returned by LockCampaign cannot change underneath the caller until Commit or
// Rollback.
type LedgerTx interface {
	LockCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error)
	CreateDonation(ctx context.Context, d *Donation) error
	UpdateCampaign(ctx context.Context, c *Campaign) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type RecordParams struct {
	DonorName  string
	DonorEmail string
	Amount     decimal.Decimal
	Currency   Currency
	Type       Type
	CampaignID *uuid.UUID
	Message    string
}

func (p RecordParams) validate() error {
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}

	email := normalizeEmail(p.DonorEmail)
	if email == "" {
		return fmt.Errorf("%w: donor email is required", ErrValidation)
	}

	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("%w: invalid donor email %q", ErrValidation, p.DonorEmail)
	}

	if !p.Currency.Valid() {
		return fmt.Errorf("%w: unsupported currency %q", ErrValidation, p.Currency)
	}

	if !p.Type.Valid() {
		return fmt.Errorf("%w: unsupported donation type %q", ErrValidation, p.Type)
	}

	return nil
}

type ListFilter struct {
	CampaignID *uuid.UUID
}

type CampaignFilter struct {
	Status *CampaignStatus
}

// RecordDonation stores a completed donation and credits the referenced
// campaign. A campaign id that resolves to nothing is not an error: the
// donation goes to the general fund and comes back with a nil CampaignID.
func (s *Service) RecordDonation(ctx context.Context, params RecordParams) (*Donation, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	d := &Donation{
		ID:         uuid.New(),
		DonorName:  strings.TrimSpace(params.DonorName),
		DonorEmail: normalizeEmail(params.DonorEmail),
		Amount:     params.Amount,
		Currency:   params.Currency,
		Type:       params.Type,
		Message:    strings.TrimSpace(params.Message),
		Status:     StatusCompleted,
		CreatedAt:  s.now(),
	}

	ltx, err := s.repo.BeginLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	var campaign *Campaign

	if params.CampaignID != nil {
		campaign, err = ltx.LockCampaign(ctx, *params.CampaignID)
		switch {
		case errors.Is(err, ErrNotFound):
			campaign = nil
		case err != nil:
			return nil, fmt.Errorf("lock campaign: %w", err)
		default:
			d.CampaignID = new(campaign.ID)
		}
	}

	if err := ltx.CreateDonation(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	if campaign != nil {
		campaign.Apply(d.Amount)

		if err := ltx.UpdateCampaign(ctx, campaign); err != nil {
			return nil, fmt.Errorf("update campaign: %w", err)
		}
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit donation: %w", err)
	}

	return d, nil
}

// ListActiveCampaigns returns the campaigns still raising money, oldest first.
func (s *Service) ListActiveCampaigns(ctx context.Context) ([]*Campaign, error) {
	return s.repo.ListCampaigns(ctx, CampaignFilter{Status: new(CampaignActive)})
}

func (s *Service) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]*Campaign, error) {
	return s.repo.ListCampaigns(ctx, filter)
}

func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

// ListCampaignDonations returns ErrNotFound for an unknown campaign rather
// than an empty list.
func (s *Service) ListCampaignDonations(ctx context.Context, campaignID uuid.UUID) ([]*Donation, error) {
	if _, err := s.repo.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	return s.repo.ListDonations(ctx, ListFilter{CampaignID: &campaignID})
}

func (s *Service) ListDonations(ctx context.Context, filter ListFilter) ([]*Donation, error) {
	return s.repo.ListDonations(ctx, filter)
}

func (s *Service) GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return s.repo.GetDonation(ctx, id)
}

func (s *Service) ComputeStats(ctx context.Context) (Stats, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("computing totals: %w", err)
	}

	return totals.stats(), nil
}

// DonationOptions returns the preset amounts shown to donors.
func (s *Service) DonationOptions() []Option {
	opts := make([]Option, len(presetOptions))
	copy(opts, presetOptions)

	return opts
}

type CampaignParams struct {
	MemberName    string
	Reason        string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Deadline      *time.Time
	CreatedAt     time.Time // zero means now
}

func (p CampaignParams) validate() error {
	if strings.TrimSpace(p.MemberName) == "" {
		return fmt.Errorf("%w: member name is required", ErrValidation)
	}

	if !p.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target amount must be greater than zero", ErrValidation)
	}

	if p.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: current amount cannot be negative", ErrValidation)
	}

	return nil
}

// CreateCampaign opens a campaign. One created already at or past its target
// starts out completed.
func (s *Service) CreateCampaign(ctx context.Context, params CampaignParams) (*Campaign, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	c := &Campaign{
		ID:            uuid.New(),
		MemberName:    strings.TrimSpace(params.MemberName),
		Reason:        strings.TrimSpace(params.Reason),
		TargetAmount:  params.TargetAmount,
		CurrentAmount: params.CurrentAmount,
		Status:        CampaignActive,
		Deadline:      params.Deadline,
		CreatedAt:     params.CreatedAt,
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	c.settle()

	if err := s.repo.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) CancelCampaign(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	ltx, err := s.repo.BeginLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	c, err := ltx.LockCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.Cancel(); err != nil {
		return nil, fmt.Errorf("cancel campaign %s in status %s: %w", c.ID, c.Status, err)
	}

	if err := ltx.UpdateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}

	return c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
