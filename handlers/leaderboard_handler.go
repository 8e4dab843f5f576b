package handlers

import (
	"net/http"
	"strconv"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Get serves the ranking for a period, ALL_TIME by default, top ten unless
// a limit is given.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	period := models.PeriodAllTime
	if raw := r.URL.Query().Get("period"); raw != "" {
		period = models.LeaderboardPeriod(raw)
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	entries, err := h.leaderboardService.Get(r.Context(), period, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"period":      period,
		"leaderboard": entries,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
