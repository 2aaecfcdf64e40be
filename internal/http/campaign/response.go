package campaign

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
)

type campaignResponse struct {
	ID                 uuid.UUID               `json:"id"`
	MemberName         string                  `json:"member_name"`
	Reason             string                  `json:"reason,omitempty"`
	TargetAmount       decimal.Decimal         `json:"target_amount"`
	CurrentAmount      decimal.Decimal         `json:"current_amount"`
	PercentageComplete decimal.Decimal         `json:"percentage_complete"`
	Status             donation.CampaignStatus `json:"status"`
	Deadline           *time.Time              `json:"deadline,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

func toResponse(c *donation.Campaign) campaignResponse {
	return campaignResponse{
		ID:                 c.ID,
		MemberName:         c.MemberName,
		Reason:             c.Reason,
		TargetAmount:       c.TargetAmount,
		CurrentAmount:      c.CurrentAmount,
		PercentageComplete: c.PercentageComplete().Round(2),
		Status:             c.Status,
		Deadline:           c.Deadline,
		CreatedAt:          c.CreatedAt,
	}
}

func toResponseList(cs []*donation.Campaign) []campaignResponse {
	resp := make([]campaignResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	return resp
}
