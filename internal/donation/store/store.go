package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectDonationColumns = `
	id, donor_name, donor_email, amount, currency, type, campaign_id, message, status, created_at
`

// scanDonation expects the column order of selectDonationColumns.
func scanDonation(s scanner) (*donation.Donation, error) {
	var d donation.Donation

	var currency, typ, status string

	if err := s.Scan(
		&d.ID, &d.DonorName, &d.DonorEmail, &d.Amount, &currency, &typ,
		&d.CampaignID, &d.Message, &status, &d.CreatedAt,
	); err != nil {
		return nil, err
	}

	d.Currency = donation.Currency(currency)
	d.Type = donation.Type(typ)
	d.Status = donation.Status(status)

	return &d, nil
}

const selectCampaignColumns = `
	id, member_name, reason, target_amount, current_amount, status, deadline, created_at
`

// scanCampaign expects the column order of selectCampaignColumns.
func scanCampaign(s scanner) (*donation.Campaign, error) {
	var c donation.Campaign

	var status string

	if err := s.Scan(
		&c.ID, &c.MemberName, &c.Reason, &c.TargetAmount, &c.CurrentAmount,
		&status, &c.Deadline, &c.CreatedAt,
	); err != nil {
		return nil, err
	}

	c.Status = donation.CampaignStatus(status)

	return &c, nil
}

func (s *Store) GetDonation(ctx context.Context, id uuid.UUID) (*donation.Donation, error) {
	query := `SELECT ` + selectDonationColumns + ` FROM donations WHERE id = $1`

	d, err := scanDonation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, donation.ErrNotFound
		}

		return nil, fmt.Errorf("getting donation: %w", err)
	}

	return d, nil
}

func (s *Store) ListDonations(ctx context.Context, filter donation.ListFilter) ([]*donation.Donation, error) {
	query := `SELECT ` + selectDonationColumns + ` FROM donations`

	var args []any

	if filter.CampaignID != nil {
		query += " WHERE campaign_id = $1"

		args = append(args, *filter.CampaignID)
	}

	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	defer rows.Close()

	var out []*donation.Donation

	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}

		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating donation rows: %w", err)
	}

	return out, nil
}

func (s *Store) Totals(ctx context.Context) (donation.Totals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount), 0), COUNT(DISTINCT LOWER(donor_email))
		FROM donations
	`

	var t donation.Totals

	if err := s.db.QueryRowContext(ctx, query).Scan(&t.Count, &t.Sum, &t.Donors); err != nil {
		return donation.Totals{}, fmt.Errorf("summing donations: %w", err)
	}

	return t, nil
}

func getCampaign(ctx context.Context, q querier, id uuid.UUID, lock bool) (*donation.Campaign, error) {
	query := `SELECT ` + selectCampaignColumns + ` FROM campaigns WHERE id = $1`
	if lock {
		query += " FOR UPDATE"
	}

	c, err := scanCampaign(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, donation.ErrNotFound
		}

		return nil, fmt.Errorf("getting campaign: %w", err)
	}

	return c, nil
}

func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (*donation.Campaign, error) {
	return getCampaign(ctx, s.db, id, false)
}

func (s *Store) ListCampaigns(ctx context.Context, filter donation.CampaignFilter) ([]*donation.Campaign, error) {
	query := `SELECT ` + selectCampaignColumns + ` FROM campaigns`

	var args []any

	if filter.Status != nil {
		query += " WHERE status = $1"

		args = append(args, *filter.Status)
	}

	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var out []*donation.Campaign

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}

		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaign rows: %w", err)
	}

	return out, nil
}

func (s *Store) CreateCampaign(ctx context.Context, c *donation.Campaign) error {
	query := `
		INSERT INTO campaigns (id, member_name, reason, target_amount, current_amount, status, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.MemberName,
		c.Reason,
		c.TargetAmount,
		c.CurrentAmount,
		c.Status,
		c.Deadline,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating campaign: %w", err)
	}

	return nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (s *Store) BeginLedger(ctx context.Context) (donation.LedgerTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	return &ledgerTx{tx: dbTx}, nil
}

func (ltx *ledgerTx) Commit() error { return ltx.tx.Commit() }

// Rollback after Commit reports sql.ErrTxDone; callers defer it unconditionally.
func (ltx *ledgerTx) Rollback() error { return ltx.tx.Rollback() }

// LockCampaign takes a row lock so concurrent donations to the same campaign
// apply one after another.
func (ltx *ledgerTx) LockCampaign(ctx context.Context, id uuid.UUID) (*donation.Campaign, error) {
	return getCampaign(ctx, ltx.tx, id, true)
}

func (ltx *ledgerTx) CreateDonation(ctx context.Context, d *donation.Donation) error {
	query := `
		INSERT INTO donations (id, donor_name, donor_email, amount, currency, type, campaign_id, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := ltx.tx.ExecContext(ctx, query,
		d.ID,
		d.DonorName,
		d.DonorEmail,
		d.Amount,
		d.Currency,
		d.Type,
		d.CampaignID,
		d.Message,
		d.Status,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating donation: %w", err)
	}

	return nil
}

func (ltx *ledgerTx) UpdateCampaign(ctx context.Context, c *donation.Campaign) error {
	query := `
		UPDATE campaigns
		SET current_amount = $1, status = $2
		WHERE id = $3
	`

	res, err := ltx.tx.ExecContext(ctx, query, c.CurrentAmount, c.Status, c.ID)
	if err != nil {
		return fmt.Errorf("updating campaign: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating campaign: %w", err)
	}

	if n == 0 {
		return donation.ErrNotFound
	}

	return nil
}
