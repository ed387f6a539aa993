package memory

import (
	"context"
	"sync"

	"ecoquiz-service/internal/domain"
)

// AttemptStore keeps attempts and points in memory. It backs tests and
// deployments without Postgres configured.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []domain.AttemptRecord
	points   map[string]int
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		points: make(map[string]int),
	}
}

func (s *AttemptStore) SaveAttempt(_ context.Context, rec domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, rec)
	return nil
}

func (s *AttemptStore) AddPoints(_ context.Context, userID string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[userID] += points
	return nil
}

// Attempts returns a copy of the recorded attempts.
func (s *AttemptStore) Attempts() []domain.AttemptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptRecord, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// Points returns the cumulative total for a user.
func (s *AttemptStore) Points(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[userID]
}
