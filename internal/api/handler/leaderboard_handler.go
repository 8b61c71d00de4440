package handler

import (
	"net/http"

	"ml_arena/internal/app/service"
	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getAllLeaderboards)
	r.Get("/{problemID}", h.GetProblemLeaderboard)
}

func (h *LeaderboardHandler) getAllLeaderboards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.leaderboardService.ComputeAll(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, boards)
}

// GetProblemLeaderboard also mounts under /problems/{problemID}/leaderboard.
func (h *LeaderboardHandler) GetProblemLeaderboard(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")

	entries, err := h.leaderboardService.GetProblemLeaderboard(r.Context(), problemID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type ProblemLeaderboardResponse struct {
		ProblemID string                   `json:"problem_id"`
		Entries   []model.LeaderboardEntry `json:"entries"`
	}
	common.RespondWithJSON(w, http.StatusOK, ProblemLeaderboardResponse{
		ProblemID: problemID,
		Entries:   entries,
	})
}
