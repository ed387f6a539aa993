package postgres

import (
	"context"
	"fmt"

	"ecoquiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore persists completed quiz attempts and cumulative profile points.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// SaveAttempt appends one attempt row. Rows are never mutated afterwards.
func (s *AttemptStore) SaveAttempt(ctx context.Context, rec domain.AttemptRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (user_id, category, difficulty, score, total_questions, points_earned, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.UserID, rec.Category, string(rec.Difficulty), rec.Score, rec.TotalQuestions, rec.PointsEarned, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// AddPoints increments a profile's points total in a single statement, so
// concurrent completions by the same user cannot lose updates.
func (s *AttemptStore) AddPoints(ctx context.Context, userID string, points int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, points) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET points = profiles.points + excluded.points`,
		userID, points,
	)
	if err != nil {
		return fmt.Errorf("update points: %w", err)
	}
	return nil
}

// Points reads a profile's cumulative points total.
func (s *AttemptStore) Points(ctx context.Context, userID string) (int, error) {
	var points int
	err := s.pool.QueryRow(ctx, `SELECT points FROM profiles WHERE user_id=$1`, userID).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("read points: %w", err)
	}
	return points, nil
}
