package redis

import (
	"context"
	"fmt"

	"ecoquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "quiz:leaderboard"

// Leaderboard mirrors cumulative points into a Redis sorted set. The relational
// store stays the source of truth; this is the fast read path for the public
// leaderboard.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) AddPoints(ctx context.Context, userID string, points int) error {
	if err := l.client.ZIncrBy(ctx, leaderboardKey, float64(points), userID).Err(); err != nil {
		return fmt.Errorf("leaderboard incr: %w", err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	members, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, member := range members {
		userID, ok := member.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID: userID,
			Points: int(member.Score),
		})
	}
	return entries, nil
}
