package donation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

func validParams() donation.RecordParams {
	return donation.RecordParams{
		DonorName:  "Ahmed Hassan",
		DonorEmail: " Ahmed@Example.com ",
		Amount:     decimal.NewFromInt(100),
		Currency:   donation.CurrencyGBP,
		Type:       donation.TypeOneTime,
	}
}

func TestService_RecordDonation(t *testing.T) {
	campaignID := uuid.New()

	type testCase struct {
		name       string
		params     func() donation.RecordParams
		setupMock  func(repo *donation.MockRepository, ltx *donation.MockLedgerTx)
		wantErr    error
		wantAnyErr bool
		check      func(t *testing.T, d *donation.Donation)
	}

	tests := []testCase{
		{
			name:   "GeneralFund",
			params: validParams,
			setupMock: func(repo *donation.MockRepository, ltx *donation.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
				ltx.EXPECT().CreateDonation(gomock.Any(), gomock.Any()).Return(nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, d *donation.Donation) {
				assert.NotEqual(t, uuid.Nil, d.ID)
				assert.Equal(t, "ahmed@example.com", d.DonorEmail)
				assert.Equal(t, donation.StatusCompleted, d.Status)
				assert.Nil(t, d.CampaignID)
				assert.False(t, d.CreatedAt.IsZero())
			},
		},
		{
			name: "CompletesCampaign",
			params: func() donation.RecordParams {
				p := validParams()
				p.Amount = decimal.NewFromInt(2750)
				p.CampaignID = &campaignID

				return p
			},
			setupMock: func(repo *donation.MockRepository, ltx *donation.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
				ltx.EXPECT().LockCampaign(gomock.Any(), campaignID).Return(&donation.Campaign{
					ID:            campaignID,
					TargetAmount:  decimal.NewFromInt(10000),
					CurrentAmount: decimal.NewFromInt(7250),
					Status:        donation.CampaignActive,
				}, nil)
				ltx.EXPECT().CreateDonation(gomock.Any(), gomock.Any()).Return(nil)
				ltx.EXPECT().
					UpdateCampaign(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *donation.Campaign) error {
						assert.True(t, c.CurrentAmount.Equal(decimal.NewFromInt(10000)))
						assert.True(t, c.PercentageComplete().Equal(decimal.NewFromInt(100)))
						assert.Equal(t, donation.CampaignCompleted, c.Status)

						return nil
					})
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, d *donation.Donation) {
				require.NotNil(t, d.CampaignID)
				assert.Equal(t, campaignID, *d.CampaignID)
			},
		},
		{
			name: "UnknownCampaignGoesToGeneralFund",
			params: func() donation.RecordParams {
				p := validParams()
				p.CampaignID = &campaignID

				return p
			},
			setupMock: func(repo *donation.MockRepository, ltx *donation.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
				ltx.EXPECT().LockCampaign(gomock.Any(), campaignID).Return(nil, donation.ErrNotFound)
				ltx.EXPECT().CreateDonation(gomock.Any(), gomock.Any()).Return(nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, d *donation.Donation) {
				assert.Nil(t, d.CampaignID)
			},
		},
		{
			name: "NegativeAmount",
			params: func() donation.RecordParams {
				p := validParams()
				p.Amount = decimal.NewFromInt(-5)

				return p
			},
			wantErr: donation.ErrValidation,
		},
		{
			name: "ZeroAmount",
			params: func() donation.RecordParams {
				p := validParams()
				p.Amount = decimal.Zero

				return p
			},
			wantErr: donation.ErrValidation,
		},
		{
			name: "MissingEmail",
			params: func() donation.RecordParams {
				p := validParams()
				p.DonorEmail = "   "

				return p
			},
			wantErr: donation.ErrValidation,
		},
		{
			name: "MalformedEmail",
			params: func() donation.RecordParams {
				p := validParams()
				p.DonorEmail = "ahmed.example.com"

				return p
			},
			wantErr: donation.ErrValidation,
		},
		{
			name: "UnknownCurrency",
			params: func() donation.RecordParams {
				p := validParams()
				p.Currency = "XAF"

				return p
			},
			wantErr: donation.ErrValidation,
		},
		{
			name: "UnknownType",
			params: func() donation.RecordParams {
				p := validParams()
				p.Type = "weekly"

				return p
			},
			wantErr: donation.ErrValidation,
		},
		{
			name:   "BeginError",
			params: validParams,
			setupMock: func(repo *donation.MockRepository, _ *donation.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantAnyErr: true,
		},
		{
			name:   "CreateErrorRollsBack",
			params: validParams,
			setupMock: func(repo *donation.MockRepository, ltx *donation.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
				ltx.EXPECT().CreateDonation(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantAnyErr: true,
		},
		{
			name: "LockErrorIsFatal",
			params: func() donation.RecordParams {
				p := validParams()
				p.CampaignID = &campaignID

				return p
			},
			setupMock: func(repo *donation.MockRepository, ltx *donation.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
				ltx.EXPECT().LockCampaign(gomock.Any(), campaignID).Return(nil, errors.New("deadlock"))
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := donation.NewMockRepository(ctrl)
			ltx := donation.NewMockLedgerTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, ltx)
			}

			svc := donation.NewService(repo)
			got, err := svc.RecordDonation(context.Background(), tt.params())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			if tt.wantAnyErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_ListActiveCampaigns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := donation.NewMockRepository(ctrl)
	svc := donation.NewService(repo)

	active := donation.CampaignActive
	repo.EXPECT().
		ListCampaigns(gomock.Any(), donation.CampaignFilter{Status: &active}).
		Return([]*donation.Campaign{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := svc.ListActiveCampaigns(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_ComputeStats(t *testing.T) {
	type testCase struct {
		name        string
		totals      donation.Totals
		repoErr     error
		wantAverage string
		wantErr     bool
	}

	tests := []testCase{
		{
			name:        "Empty",
			totals:      donation.Totals{Sum: decimal.Zero},
			wantAverage: "0",
		},
		{
			name:        "Seeded",
			totals:      donation.Totals{Count: 3, Sum: decimal.NewFromInt(175), Donors: 3},
			wantAverage: "58.33",
		},
		{
			name:    "RepoError",
			repoErr: errors.New("boom"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := donation.NewMockRepository(ctrl)
			repo.EXPECT().Totals(gomock.Any()).Return(tt.totals, tt.repoErr)

			got, err := donation.NewService(repo).ComputeStats(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.totals.Count, got.Count)
			assert.True(t, got.Total.Equal(tt.totals.Sum))
			assert.Equal(t, tt.totals.Donors, got.DistinctDonors)
			assert.Equal(t, tt.wantAverage, got.Average.Round(2).String())
		})
	}
}

func TestService_ListCampaignDonations_UnknownCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := donation.NewMockRepository(ctrl)
	id := uuid.New()
	repo.EXPECT().GetCampaign(gomock.Any(), id).Return(nil, donation.ErrNotFound)

	_, err := donation.NewService(repo).ListCampaignDonations(context.Background(), id)
	assert.ErrorIs(t, err, donation.ErrNotFound)
}

func TestService_CreateCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := donation.NewMockRepository(ctrl)
	svc := donation.NewService(repo)

	repo.EXPECT().CreateCampaign(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	open, err := svc.CreateCampaign(context.Background(), donation.CampaignParams{
		MemberName:   "Victor Tango",
		TargetAmount: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, donation.CampaignActive, open.Status)
	assert.False(t, open.CreatedAt.IsZero())

	funded, err := svc.CreateCampaign(context.Background(), donation.CampaignParams{
		MemberName:    "Nadia Sanda",
		TargetAmount:  decimal.NewFromInt(10000),
		CurrentAmount: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	assert.Equal(t, donation.CampaignCompleted, funded.Status)

	_, err = svc.CreateCampaign(context.Background(), donation.CampaignParams{
		MemberName:   "Nobody",
		TargetAmount: decimal.Zero,
	})
	assert.ErrorIs(t, err, donation.ErrValidation)
}

func TestService_CancelCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := donation.NewMockRepository(ctrl)
	ltx := donation.NewMockLedgerTx(ctrl)
	svc := donation.NewService(repo)

	id := uuid.New()
	repo.EXPECT().BeginLedger(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().LockCampaign(gomock.Any(), id).Return(&donation.Campaign{ID: id, Status: donation.CampaignCompleted}, nil)
	ltx.EXPECT().Rollback().Return(nil)

	_, err := svc.CancelCampaign(context.Background(), id)
	assert.ErrorIs(t, err, donation.ErrInvalidTransition)
}

func TestService_DonationOptions(t *testing.T) {
	svc := donation.NewService(nil)

	opts := svc.DonationOptions()
	require.Len(t, opts, 6)
	assert.True(t, opts[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, opts[5].Custom())

	opts[0].Label = "changed"
	assert.Equal(t, "Help a Little", svc.DonationOptions()[0].Label)
}
