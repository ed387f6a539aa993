package http

import (
	"net/http"
	"strconv"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/domain"
)

const defaultLeaderboardLimit = 10

// LeaderboardHandler serves the top cumulative point holders.
type LeaderboardHandler struct {
	service *app.QuizService
}

func NewLeaderboardHandler(service *app.QuizService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

type leaderboardResponse struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}
