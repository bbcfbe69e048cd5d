package handlers

import (
	"net/http"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CampaignHandler provides HTTP handlers for email campaigns.
type CampaignHandler struct {
	campaignService *services.CampaignService
	logger          *zap.Logger
}

// NewCampaignHandler constructs a CampaignHandler.
func NewCampaignHandler(campaignService *services.CampaignService, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, logger: logger}
}

// CampaignRouter registers campaign routes. All of them are admin only.
func CampaignRouter(r chi.Router, campaignService *services.CampaignService, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	handler := NewCampaignHandler(campaignService, logger)

	r.Use(authMiddleware, RequireRole(types.RoleAdmin))
	r.Get("/groups", handler.Groups)
	r.Post("/", handler.Send)
}

func (h *CampaignHandler) Groups(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	groups, err := h.campaignService.Groups(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Send queues a campaign and replies 202; delivery happens in the worker.
func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req services.CampaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	campaign, err := h.campaignService.Send(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, campaign)
}
