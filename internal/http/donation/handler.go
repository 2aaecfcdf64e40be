package donation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kinship/internal/donation"
	"github.com/MrJamesThe3rd/kinship/internal/http/respond"
)

type Handler struct {
	svc             *donation.Service
	defaultCurrency donation.Currency
}

func NewHandler(svc *donation.Service, defaultCurrency donation.Currency) *Handler {
	return &Handler{svc: svc, defaultCurrency: defaultCurrency}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/options", h.options)
	r.With(middleware.AllowContentType("application/json")).Post("/", h.create)
	r.Get("/{id}", h.get)
}

// AdminRoutes are mounted next to Routes, behind the auth middleware.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, toOptionList(h.svc.DonationOptions()))
}

type createDonationRequest struct {
	DonorName  string            `json:"donor_name"`
	DonorEmail string            `json:"donor_email"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   donation.Currency `json:"currency"`
	Type       donation.Type     `json:"type"`
	CampaignID *uuid.UUID        `json:"campaign_id,omitempty"`
	Message    string            `json:"message"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Currency == "" {
		req.Currency = h.defaultCurrency
	}

	if req.Type == "" {
		req.Type = donation.TypeOneTime
	}

	d, err := h.svc.RecordDonation(r.Context(), donation.RecordParams{
		DonorName:  req.DonorName,
		DonorEmail: req.DonorEmail,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Type:       req.Type,
		CampaignID: req.CampaignID,
		Message:    req.Message,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(d))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	d, err := h.svc.GetDonation(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(d))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := donation.ListFilter{}

	if s := r.URL.Query().Get("campaign_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid campaign_id", http.StatusBadRequest)
			return
		}

		filter.CampaignID = new(id)
	}

	ds, err := h.svc.ListDonations(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(ds))
}

// Stats serves the ledger-wide donation statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ComputeStats(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStatsResponse(stats))
}
