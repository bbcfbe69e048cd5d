package handlers

import (
	"net/http"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DonationHandler provides HTTP handlers for donations.
type DonationHandler struct {
	donationService *services.DonationService
	logger          *zap.Logger
}

// NewDonationHandler constructs a DonationHandler.
func NewDonationHandler(donationService *services.DonationService, logger *zap.Logger) *DonationHandler {
	return &DonationHandler{donationService: donationService, logger: logger}
}

// DonationRouter registers donation routes. Pledges are public, the ledger is
// admin only.
func DonationRouter(r chi.Router, donationService *services.DonationService, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	handler := NewDonationHandler(donationService, logger)

	r.Post("/", handler.CreateDonation)
	r.With(authMiddleware, RequireRole(types.RoleAdmin)).Get("/", handler.ListDonations)
}

func (h *DonationHandler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var donation types.Donation
	if !decodeJSON(w, r, &donation) {
		return
	}
	created, err := h.donationService.Create(r.Context(), donation)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *DonationHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	donations, err := h.donationService.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}
