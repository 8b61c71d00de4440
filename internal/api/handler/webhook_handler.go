package handler

import (
	"encoding/json"
	"net/http"

	"ml_arena/internal/app/service"
	"ml_arena/internal/common"

	"github.com/go-chi/chi/v5"
)

// WebhookHandler receives evaluation results pushed back by the external
// evaluator. It is mounted outside the authenticated API surface.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

func NewWebhookHandler(ws *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: ws}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/evaluation", h.handleEvaluationResult)
}

func (h *WebhookHandler) handleEvaluationResult(w http.ResponseWriter, r *http.Request) {
	var payload service.EvaluationResultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid payload: "+err.Error())
		return
	}
	if payload.SubmissionID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "submission_id is required")
		return
	}

	if err := h.webhookService.HandleEvaluationResult(r.Context(), payload); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
