package memory

import (
	"context"
	"sort"
	"sync"

	"ecoquiz-service/internal/domain"
)

// Leaderboard is the in-memory implementation of app.LeaderboardStore, used
// when Redis is unconfigured.
type Leaderboard struct {
	mu     sync.RWMutex
	points map[string]int
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		points: make(map[string]int),
	}
}

func (l *Leaderboard) AddPoints(_ context.Context, userID string, points int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.points[userID] += points
	return nil
}

func (l *Leaderboard) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(l.points))
	for userID, points := range l.points {
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Points: points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
