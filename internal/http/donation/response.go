package donation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

// Response is the JSON shape of a donation.
type Response struct {
	ID         uuid.UUID         `json:"id"`
	DonorName  string            `json:"donor_name"`
	DonorEmail string            `json:"donor_email"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   donation.Currency `json:"currency"`
	Type       donation.Type     `json:"type"`
	CampaignID *uuid.UUID        `json:"campaign_id,omitempty"`
	Message    string            `json:"message,omitempty"`
	Status     donation.Status   `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

type optionResponse struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Custom      bool            `json:"custom"`
}

type statsResponse struct {
	Count          int             `json:"count"`
	Total          decimal.Decimal `json:"total"`
	Average        decimal.Decimal `json:"average"`
	DistinctDonors int             `json:"distinct_donors"`
}

func ToResponse(d *donation.Donation) Response {
	return Response{
		ID:         d.ID,
		DonorName:  d.DonorName,
		DonorEmail: d.DonorEmail,
		Amount:     d.Amount,
		Currency:   d.Currency,
		Type:       d.Type,
		CampaignID: d.CampaignID,
		Message:    d.Message,
		Status:     d.Status,
		CreatedAt:  d.CreatedAt,
	}
}

func ToResponseList(ds []*donation.Donation) []Response {
	resp := make([]Response, len(ds))
	for i, d := range ds {
		resp[i] = ToResponse(d)
	}

	return resp
}

func toOptionList(opts []donation.Option) []optionResponse {
	resp := make([]optionResponse, len(opts))
	for i, o := range opts {
		resp[i] = optionResponse{
			ID:          o.ID,
			Amount:      o.Amount,
			Label:       o.Label,
			Description: o.Description,
			Custom:      o.Custom(),
		}
	}

	return resp
}

func toStatsResponse(s donation.Stats) statsResponse {
	return statsResponse{
		Count:          s.Count,
		Total:          s.Total,
		Average:        s.Average.Round(2),
		DistinctDonors: s.DistinctDonors,
	}
}
