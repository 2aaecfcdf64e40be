package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/donation/memstore"
	kinshipHttp "github.com/MrJamesThe3rd/kinship/internal/http"
	"github.com/MrJamesThe3rd/kinship/internal/http/auth"
	"github.com/MrJamesThe3rd/kinship/internal/http/campaign"
	donationHandler "github.com/MrJamesThe3rd/kinship/internal/http/donation"
)

var secret = []byte("router-test-secret")

type campaignBody struct {
	ID                 uuid.UUID               `json:"id"`
	MemberName         string                  `json:"member_name"`
	CurrentAmount      decimal.Decimal         `json:"current_amount"`
	PercentageComplete decimal.Decimal         `json:"percentage_complete"`
	Deadline           *time.Time              `json:"deadline"`
	Status             donation.CampaignStatus `json:"status"`
}

type donationBody struct {
	ID         uuid.UUID         `json:"id"`
	DonorEmail string            `json:"donor_email"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   donation.Currency `json:"currency"`
	Type       donation.Type     `json:"type"`
	CampaignID *uuid.UUID        `json:"campaign_id"`
	Status     donation.Status   `json:"status"`
}

type fixture struct {
	svc    *donation.Service
	router http.Handler
}

func newFixture(t *testing.T, withAdmin bool) fixture {
	t.Helper()

	svc := donation.NewService(memstore.New())
	require.NoError(t, svc.Seed(context.Background()))

	opts := kinshipHttp.Options{AllowedOrigins: []string{"*"}}
	if withAdmin {
		opts.Admin = auth.Middleware(secret)
	}

	router := kinshipHttp.New(
		donationHandler.NewHandler(svc, donation.CurrencyGBP),
		campaign.NewHandler(svc),
		opts,
	)

	return fixture{svc: svc, router: router}
}

func (f fixture) campaign(t *testing.T, member string) *donation.Campaign {
	t.Helper()

	all, err := f.svc.ListCampaigns(context.Background(), donation.CampaignFilter{})
	require.NoError(t, err)

	for _, c := range all {
		if c.MemberName == member {
			return c
		}
	}

	t.Fatalf("no campaign for %s", member)

	return nil
}

func (f fixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func TestDonationOptions(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/v1/donations/options", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	opts := decode[[]struct {
		ID     string          `json:"id"`
		Amount decimal.Decimal `json:"amount"`
		Custom bool            `json:"custom"`
	}](t, rec)

	require.Len(t, opts, 6)
	assert.Equal(t, "opt1", opts[0].ID)
	assert.True(t, opts[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.True(t, opts[5].Custom)
}

func TestRecordDonation_CompletesCampaign(t *testing.T) {
	f := newFixture(t, false)
	james := f.campaign(t, "James Djoume")

	body := `{"donor_name":"Amina","donor_email":"Amina@Example.com","amount":"2750","campaign_id":"` + james.ID.String() + `"}`

	rec := f.do(t, http.MethodPost, "/api/v1/donations", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	d := decode[donationBody](t, rec)
	assert.Equal(t, "amina@example.com", d.DonorEmail)
	assert.Equal(t, donation.CurrencyGBP, d.Currency)
	assert.Equal(t, donation.TypeOneTime, d.Type)
	assert.Equal(t, donation.StatusCompleted, d.Status)
	require.NotNil(t, d.CampaignID)
	assert.Equal(t, james.ID, *d.CampaignID)

	rec = f.do(t, http.MethodGet, "/api/v1/campaigns/"+james.ID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	c := decode[campaignBody](t, rec)
	assert.Equal(t, donation.CampaignCompleted, c.Status)
	assert.True(t, c.CurrentAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, c.PercentageComplete.Equal(decimal.NewFromInt(100)))

	rec = f.do(t, http.MethodGet, "/api/v1/donations/"+d.ID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, d.ID, decode[donationBody](t, rec).ID)
}

func TestRecordDonation_UnknownCampaignGoesToGeneralFund(t *testing.T) {
	f := newFixture(t, false)

	body := `{"donor_email":"x@example.com","amount":12.5,"currency":"EUR","type":"monthly","campaign_id":"` + uuid.NewString() + `"}`

	rec := f.do(t, http.MethodPost, "/api/v1/donations", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	d := decode[donationBody](t, rec)
	assert.Nil(t, d.CampaignID)
	assert.True(t, d.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, donation.CurrencyEUR, d.Currency)
	assert.Equal(t, donation.TypeMonthly, d.Type)
}

func TestRecordDonation_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{name: "zero amount", body: `{"donor_email":"x@example.com","amount":"0"}`, want: http.StatusBadRequest},
		{name: "negative amount", body: `{"donor_email":"x@example.com","amount":"-10"}`, want: http.StatusBadRequest},
		{name: "missing amount", body: `{"donor_email":"x@example.com"}`, want: http.StatusBadRequest},
		{name: "unknown currency", body: `{"donor_email":"x@example.com","amount":"5","currency":"JPY"}`, want: http.StatusBadRequest},
		{name: "malformed json", body: `{"amount":`, want: http.StatusBadRequest},
		{name: "wrong content type", body: `{"donor_email":"x@example.com","amount":"5"}`, contentType: "text/plain", want: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/donations", strings.NewReader(tt.body))
			ct := tt.contentType
			if ct == "" {
				ct = "application/json"
			}
			req.Header.Set("Content-Type", ct)

			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)

			stats, err := f.svc.ComputeStats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, stats.Count)
		})
	}
}

func TestGetDonation_NotFound(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/donations/"+uuid.NewString(), "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/donations/nope", "", "").Code)
}

func TestListCampaigns(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/api/v1/campaigns", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]campaignBody](t, rec), 3)

	rec = f.do(t, http.MethodGet, "/api/v1/campaigns?status=active", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	active := decode[[]campaignBody](t, rec)
	require.Len(t, active, 2)
	assert.Equal(t, "James Djoume", active[0].MemberName)
	assert.Equal(t, "Victor Tango", active[1].MemberName)

	rec = f.do(t, http.MethodGet, "/api/v1/campaigns?status=completed", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	completed := decode[[]campaignBody](t, rec)
	require.Len(t, completed, 1)
	assert.Equal(t, "Nadia Sanda", completed[0].MemberName)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/campaigns?status=paused", "", "").Code)
}

func TestCampaignDonations(t *testing.T) {
	f := newFixture(t, false)
	victor := f.campaign(t, "Victor Tango")

	body := `{"donor_email":"x@example.com","amount":"20","campaign_id":"` + victor.ID.String() + `"}`
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/donations", body, "").Code)

	rec := f.do(t, http.MethodGet, "/api/v1/campaigns/"+victor.ID.String()+"/donations", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]donationBody](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/v1/campaigns/"+uuid.NewString()+"/donations", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes_NotMountedWithoutSecret(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/stats", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/api/v1/donations", "", "").Code)
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t, true)

	token, err := auth.IssueToken(secret, "treasurer", time.Hour)
	require.NoError(t, err)

	t.Run("requires token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/stats", "", "").Code)
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/donations", "", "").Code)
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/api/v1/campaigns", `{}`, "").Code)
	})

	t.Run("public routes stay open", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/campaigns", "", "").Code)
	})

	t.Run("stats", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/stats", "", token)
		require.Equal(t, http.StatusOK, rec.Code)

		stats := decode[struct {
			Count          int             `json:"count"`
			Total          decimal.Decimal `json:"total"`
			Average        decimal.Decimal `json:"average"`
			DistinctDonors int             `json:"distinct_donors"`
		}](t, rec)

		assert.Equal(t, 3, stats.Count)
		assert.True(t, stats.Total.Equal(decimal.NewFromInt(175)))
		assert.True(t, stats.Average.Equal(decimal.RequireFromString("58.33")))
		assert.Equal(t, 3, stats.DistinctDonors)
	})

	t.Run("list donations", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/donations", "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]donationBody](t, rec), 3)

		rec = f.do(t, http.MethodGet, "/api/v1/donations?campaign_id=bad", "", token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create and cancel campaign", func(t *testing.T) {
		var logs bytes.Buffer

		prev, prevOut, prevFlags := slog.Default(), log.Writer(), log.Flags()
		slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
		t.Cleanup(func() {
			slog.SetDefault(prev)
			log.SetOutput(prevOut)
			log.SetFlags(prevFlags)
		})

		rec := f.do(t, http.MethodPost, "/api/v1/campaigns",
			`{"member_name":"Grace Eto","reason":"Repatriation of brother","target_amount":"8000"}`, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		c := decode[campaignBody](t, rec)
		assert.Equal(t, donation.CampaignActive, c.Status)
		assert.True(t, c.PercentageComplete.IsZero())

		rec = f.do(t, http.MethodPost, "/api/v1/campaigns/"+c.ID.String()+"/cancel", "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, donation.CampaignCancelled, decode[campaignBody](t, rec).Status)

		assert.Contains(t, logs.String(), `msg="campaign created"`)
		assert.Contains(t, logs.String(), `msg="campaign cancelled"`)
		assert.Contains(t, logs.String(), "by=treasurer")
	})

	t.Run("date-only deadline", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/campaigns",
			`{"member_name":"Kofi Mensah","target_amount":"3000","deadline":"2024-12-01"}`, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		c := decode[campaignBody](t, rec)
		require.NotNil(t, c.Deadline)
		assert.True(t, c.Deadline.Equal(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)))

		rec = f.do(t, http.MethodPost, "/api/v1/campaigns",
			`{"member_name":"Kofi Mensah","target_amount":"3000","deadline":"2024-12-01T00:00:00Z"}`, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid campaign", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/campaigns", `{"member_name":"","target_amount":"100"}`, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("cancel completed campaign conflicts", func(t *testing.T) {
		nadia := f.campaign(t, "Nadia Sanda")

		rec := f.do(t, http.MethodPost, "/api/v1/campaigns/"+nadia.ID.String()+"/cancel", "", token)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("cancel unknown campaign", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/campaigns/"+uuid.NewString()+"/cancel", "", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
