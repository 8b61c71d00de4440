package handler

import (
	"encoding/json"
	"net/http"

	"ml_arena/internal/api/middleware"
	"ml_arena/internal/app/service"
	"ml_arena/internal/common"

	"github.com/go-chi/chi/v5"
)

type MetricHandler struct {
	metricService *service.MetricService
}

func NewMetricHandler(ms *service.MetricService) *MetricHandler {
	return &MetricHandler{metricService: ms}
}

func (h *MetricHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listMetrics) // GET /api/v1/metrics

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createMetric)
	})
}

func (h *MetricHandler) listMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.metricService.ListMetrics(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, metrics)
}

func (h *MetricHandler) createMetric(w http.ResponseWriter, r *http.Request) {
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	var req service.CreateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	metric, err := h.metricService.CreateMetric(r.Context(), userRole, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, metric)
}
