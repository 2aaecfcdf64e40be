// Package memstore keeps the ledger in process memory. It is the default
// backend for local runs and the reference implementation in tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

type Store struct {
	mu        sync.Mutex
	donations []*donation.Donation
	campaigns []*donation.Campaign
}

func New() *Store {
	return &Store{}
}

func cloneDonation(d *donation.Donation) *donation.Donation {
	c := *d
	if d.CampaignID != nil {
		c.CampaignID = new(*d.CampaignID)
	}

	return &c
}

func cloneCampaign(c *donation.Campaign) *donation.Campaign {
	cc := *c
	if c.Deadline != nil {
		cc.Deadline = new(*c.Deadline)
	}

	return &cc
}

func (s *Store) GetDonation(_ context.Context, id uuid.UUID) (*donation.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.donations {
		if d.ID == id {
			return cloneDonation(d), nil
		}
	}

	return nil, donation.ErrNotFound
}

func (s *Store) ListDonations(_ context.Context, filter donation.ListFilter) ([]*donation.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*donation.Donation

	for _, d := range s.donations {
		if filter.CampaignID != nil && (d.CampaignID == nil || *d.CampaignID != *filter.CampaignID) {
			continue
		}

		out = append(out, cloneDonation(d))
	}

	return out, nil
}

func (s *Store) Totals(_ context.Context) (donation.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := donation.Totals{Count: len(s.donations), Sum: decimal.Zero}
	donors := make(map[string]struct{}, len(s.donations))

	for _, d := range s.donations {
		totals.Sum = totals.Sum.Add(d.Amount)
		donors[strings.ToLower(d.DonorEmail)] = struct{}{}
	}

	totals.Donors = len(donors)

	return totals, nil
}

func (s *Store) findCampaign(id uuid.UUID) (int, bool) {
	for i, c := range s.campaigns {
		if c.ID == id {
			return i, true
		}
	}

	return -1, false
}

func (s *Store) GetCampaign(_ context.Context, id uuid.UUID) (*donation.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findCampaign(id)
	if !ok {
		return nil, donation.ErrNotFound
	}

	return cloneCampaign(s.campaigns[i]), nil
}

func (s *Store) ListCampaigns(_ context.Context, filter donation.CampaignFilter) ([]*donation.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*donation.Campaign

	for _, c := range s.campaigns {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}

		out = append(out, cloneCampaign(c))
	}

	return out, nil
}

func (s *Store) CreateCampaign(_ context.Context, c *donation.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findCampaign(c.ID); ok {
		return fmt.Errorf("creating campaign: duplicate id %s", c.ID)
	}

	s.campaigns = append(s.campaigns, cloneCampaign(c))

	return nil
}

// BeginLedger takes the store lock and holds it until Commit or Rollback.
// Calling other Store methods from the goroutine holding a ledgerTx deadlocks.
func (s *Store) BeginLedger(ctx context.Context) (donation.LedgerTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()

	return &ledgerTx{store: s}, nil
}

// ledgerTx buffers writes and applies them to the store on Commit.
type ledgerTx struct {
	store     *Store
	done      bool
	donations []*donation.Donation
	campaigns map[uuid.UUID]*donation.Campaign
}

func (t *ledgerTx) LockCampaign(_ context.Context, id uuid.UUID) (*donation.Campaign, error) {
	if t.done {
		return nil, errTxDone
	}

	if c, ok := t.campaigns[id]; ok {
		return cloneCampaign(c), nil
	}

	i, ok := t.store.findCampaign(id)
	if !ok {
		return nil, donation.ErrNotFound
	}

	return cloneCampaign(t.store.campaigns[i]), nil
}

func (t *ledgerTx) CreateDonation(_ context.Context, d *donation.Donation) error {
	if t.done {
		return errTxDone
	}

	t.donations = append(t.donations, cloneDonation(d))

	return nil
}

func (t *ledgerTx) UpdateCampaign(_ context.Context, c *donation.Campaign) error {
	if t.done {
		return errTxDone
	}

	if _, ok := t.store.findCampaign(c.ID); !ok {
		return donation.ErrNotFound
	}

	if t.campaigns == nil {
		t.campaigns = make(map[uuid.UUID]*donation.Campaign)
	}

	t.campaigns[c.ID] = cloneCampaign(c)

	return nil
}

func (t *ledgerTx) Commit() error {
	if t.done {
		return errTxDone
	}

	s := t.store
	s.donations = append(s.donations, t.donations...)

	for id, c := range t.campaigns {
		i, _ := s.findCampaign(id)
		s.campaigns[i] = c
	}

	t.finish()

	return nil
}

func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}

	t.finish()

	return nil
}

func (t *ledgerTx) finish() {
	t.done = true
	t.donations = nil
	t.campaigns = nil
	t.store.mu.Unlock()
}

var errTxDone = errors.New("ledger transaction already finished")
