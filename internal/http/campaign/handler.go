package campaign

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/http/auth"
	donationHandler "github.com/MrJamesThe3rd/kinship/internal/http/donation"
	"github.com/MrJamesThe3rd/kinship/internal/http/respond"
)

type Handler struct {
	svc *donation.Service
}

func NewHandler(svc *donation.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/donations", h.donations)
}

// AdminRoutes are mounted next to Routes, behind the auth middleware.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.With(middleware.AllowContentType("application/json")).Post("/", h.create)
	r.Post("/{id}/cancel", h.cancel)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		cs  []*donation.Campaign
		err error
	)

	switch s := r.URL.Query().Get("status"); s {
	case "":
		cs, err = h.svc.ListCampaigns(r.Context(), donation.CampaignFilter{})
	case string(donation.CampaignActive):
		cs, err = h.svc.ListActiveCampaigns(r.Context())
	case string(donation.CampaignCompleted), string(donation.CampaignCancelled):
		cs, err = h.svc.ListCampaigns(r.Context(), donation.CampaignFilter{
			Status: new(donation.CampaignStatus(s)),
		})
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(cs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) donations(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	ds, err := h.svc.ListCampaignDonations(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, donationHandler.ToResponseList(ds))
}

type createCampaignRequest struct {
	MemberName    string          `json:"member_name"`
	Reason        string          `json:"reason"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      string          `json:"deadline,omitempty"`
}

// deadline parses the YYYY-MM-DD deadline, if one was sent.
func (req createCampaignRequest) deadline() (*time.Time, error) {
	if req.Deadline == "" {
		return nil, nil
	}

	d, err := time.Parse(time.DateOnly, req.Deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q: want YYYY-MM-DD", req.Deadline)
	}

	return &d, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deadline, err := req.deadline()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.CreateCampaign(r.Context(), donation.CampaignParams{
		MemberName:    req.MemberName,
		Reason:        req.Reason,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      deadline,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("campaign created", "id", c.ID, "member", c.MemberName, "by", auth.Subject(r.Context()))

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.CancelCampaign(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("campaign cancelled", "id", c.ID, "status", c.Status, "by", auth.Subject(r.Context()))

	respond.JSON(w, http.StatusOK, toResponse(c))
}
