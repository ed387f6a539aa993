package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"ecoquiz-service/internal/domain"
	"github.com/google/uuid"
)

// QuestionSource fetches a fixed batch of questions for a category/difficulty pair.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.Question, error)
}

// AttemptStore persists completed attempts and the cumulative points total.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, rec domain.AttemptRecord) error
	AddPoints(ctx context.Context, userID string, points int) error
}

// LeaderboardStore tracks cumulative points for the public leaderboard.
type LeaderboardStore interface {
	AddPoints(ctx context.Context, userID string, points int) error
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// Recommender produces age-appropriate quiz recommendations.
type Recommender interface {
	Recommend(ctx context.Context, age int) ([]string, error)
}

// SessionRegistry tracks live sessions so they can be looked up by ID and
// reaped when abandoned.
type SessionRegistry interface {
	Put(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	Idle(olderThan time.Duration) []*Session
}

// QuizService contains the quiz use cases. The attempt store, leaderboard and
// recommender are optional; a missing one degrades that feature, never the flow.
type QuizService struct {
	sessions    SessionRegistry
	questions   QuestionSource
	attempts    AttemptStore
	leaderboard LeaderboardStore
	recommender Recommender
}

func NewQuizService(sessions SessionRegistry, questions QuestionSource, attempts AttemptStore, leaderboard LeaderboardStore, recommender Recommender) *QuizService {
	return &QuizService{
		sessions:    sessions,
		questions:   questions,
		attempts:    attempts,
		leaderboard: leaderboard,
		recommender: recommender,
	}
}

// StartSession fetches questions and activates a new session. A fetch failure
// aborts session creation; nothing is registered and the error is surfaced.
func (s *QuizService) StartSession(ctx context.Context, userID, category, rawDifficulty string) (Snapshot, error) {
	difficulty, err := domain.ParseDifficulty(rawDifficulty)
	if err != nil {
		return Snapshot{}, err
	}

	questions, err := s.questions.FetchQuestions(ctx, category, difficulty)
	if err != nil {
		return Snapshot{}, err
	}

	session := NewSession(uuid.NewString(), userID, category, difficulty, questions)
	s.sessions.Put(session)
	return session.Activate(), nil
}

// SubmitAnswer records an answer for the session's current question. Repeat
// submissions after the reveal are no-ops and return the unchanged snapshot.
func (s *QuizService) SubmitAnswer(sessionID, answer string) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.SubmitAnswer(answer), nil
}

// Advance moves a revealed session to the next question, or completes it after
// the last one. Completion persists the attempt best-effort and always returns
// the result snapshot, whether or not persistence succeeded.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}

	snap, err := session.Advance()
	if err != nil {
		return snap, err
	}
	if snap.State == StateCompleted {
		s.finalize(ctx, session)
		s.sessions.Delete(sessionID)
	}
	return snap, nil
}

// Abort discards a session without persistence.
func (s *QuizService) Abort(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Abort()
	s.sessions.Delete(sessionID)
}

// Subscribe returns a channel that receives session snapshots, including the
// per-second timer ticks. The caller must invoke cancel to avoid leaks.
func (s *QuizService) Subscribe(sessionID string) (<-chan Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// finalize writes the attempt record, the points increment and the leaderboard
// entry. Every step is best-effort: failures are logged and do not affect the
// reported result.
func (s *QuizService) finalize(ctx context.Context, session *Session) {
	result, ok := session.Result()
	if !ok {
		return
	}
	userID := session.UserID()
	if userID == "" {
		return
	}

	if s.attempts != nil {
		rec := domain.AttemptRecord{
			UserID:         userID,
			Category:       session.Category(),
			Difficulty:     session.Difficulty(),
			Score:          result.Score,
			TotalQuestions: result.Total,
			PointsEarned:   result.PointsEarned,
			CreatedAt:      time.Now(),
		}
		if err := s.attempts.SaveAttempt(ctx, rec); err != nil {
			log.Printf("save attempt for user %s: %v", userID, err)
		}
		if err := s.attempts.AddPoints(ctx, userID, result.PointsEarned); err != nil {
			log.Printf("update points for user %s: %v", userID, err)
		}
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.AddPoints(ctx, userID, result.PointsEarned); err != nil {
			log.Printf("update leaderboard for user %s: %v", userID, err)
		}
	}
}

// Recommendations proxies an age to the recommender, wrapping any upstream
// failure in a single error class so callers can fall back uniformly.
func (s *QuizService) Recommendations(ctx context.Context, age int) (domain.RecommendationSet, error) {
	if s.recommender == nil {
		return domain.RecommendationSet{}, domain.ErrRecommendation
	}
	recs, err := s.recommender.Recommend(ctx, age)
	if err != nil {
		return domain.RecommendationSet{}, fmt.Errorf("%w: %v", domain.ErrRecommendation, err)
	}
	return domain.RecommendationSet{Recommendations: recs, Age: age}, nil
}

// Leaderboard returns the top cumulative point holders.
func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if s.leaderboard == nil {
		return nil, nil
	}
	return s.leaderboard.Top(ctx, limit)
}

// ReapIdle aborts sessions with no activity for longer than maxIdle. Aborted
// sessions are never persisted.
func (s *QuizService) ReapIdle(maxIdle time.Duration) int {
	stale := s.sessions.Idle(maxIdle)
	for _, session := range stale {
		session.Abort()
		s.sessions.Delete(session.ID())
	}
	if len(stale) > 0 {
		log.Printf("reaped %d idle quiz sessions", len(stale))
	}
	return len(stale)
}
