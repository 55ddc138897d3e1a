package handler

import (
	"net/http"

	"openlab/internal/httputil"
	"openlab/internal/service"
)

// RankingHandler serves the reputation leaderboard.
type RankingHandler struct {
	rankingService *service.RankingService
}

func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// Leaderboard returns all users ranked by reputation, highest first
// GET /ranking
func (h *RankingHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.rankingService.Leaderboard(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to compute ranking")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ranking": ranked,
	})
}
