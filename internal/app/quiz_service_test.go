package app_test

import (
	"context"
	"errors"
	"testing"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/infra/memory"
)

type staticSource struct {
	questions []domain.Question
	err       error
}

func (s *staticSource) FetchQuestions(context.Context, string, domain.Difficulty) ([]domain.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.questions, nil
}

type failingAttemptStore struct{}

func (failingAttemptStore) SaveAttempt(context.Context, domain.AttemptRecord) error {
	return errors.New("db down")
}
func (failingAttemptStore) AddPoints(context.Context, string, int) error {
	return errors.New("db down")
}

func tenQuestions() []domain.Question {
	questions := make([]domain.Question, 10)
	for i := range questions {
		questions[i] = domain.Question{
			Text:             "question",
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"a", "b", "c"},
			Category:         "Science & Nature",
			Difficulty:       domain.DifficultyMedium,
		}
	}
	return questions
}

func TestStartSessionFetchFailureAbortsCreation(t *testing.T) {
	registry := memory.NewSessionRegistry()
	service := app.NewQuizService(registry, &staticSource{err: domain.ErrQuestionFetch}, nil, nil, nil)

	_, err := service.StartSession(context.Background(), "u1", "history", "easy")
	if !errors.Is(err, domain.ErrQuestionFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if registry.Len() != 0 {
		t.Fatalf("no session may be registered after a failed fetch")
	}
}

func TestStartSessionRejectsUnknownDifficulty(t *testing.T) {
	service := app.NewQuizService(memory.NewSessionRegistry(), &staticSource{questions: tenQuestions()}, nil, nil, nil)

	_, err := service.StartSession(context.Background(), "u1", "history", "nightmare")
	if !errors.Is(err, domain.ErrInvalidDifficulty) {
		t.Fatalf("expected difficulty error, got %v", err)
	}
}

func TestCompletionPersistsAttemptAndPoints(t *testing.T) {
	ctx := context.Background()
	registry := memory.NewSessionRegistry()
	attempts := memory.NewAttemptStore()
	leaderboard := memory.NewLeaderboard()
	service := app.NewQuizService(registry, &staticSource{questions: tenQuestions()}, attempts, leaderboard, nil)

	snap, err := service.StartSession(ctx, "u1", "science-nature", "medium")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	correct := 0
	for i := 0; i < 10; i++ {
		answer := "wrong"
		if correct < 7 {
			answer = "right"
			correct++
		}
		if _, err := service.SubmitAnswer(snap.SessionID, answer); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		snapN, err := service.Advance(ctx, snap.SessionID)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if i == 9 {
			if snapN.State != app.StateCompleted {
				t.Fatalf("expected completion, got %s", snapN.State)
			}
			if snapN.Result.Score != 7 || snapN.Result.Total != 10 || snapN.Result.PointsEarned != 140 {
				t.Fatalf("expected 7/10 worth 140 points, got %+v", snapN.Result)
			}
		}
	}

	recs := attempts.Attempts()
	if len(recs) != 1 {
		t.Fatalf("expected one attempt record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.UserID != "u1" || rec.Category != "science-nature" || rec.Score != 7 || rec.TotalQuestions != 10 || rec.PointsEarned != 140 {
		t.Fatalf("unexpected attempt record: %+v", rec)
	}
	if attempts.Points("u1") != 140 {
		t.Fatalf("expected 140 cumulative points, got %d", attempts.Points("u1"))
	}

	top, err := leaderboard.Top(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 1 || top[0].UserID != "u1" || top[0].Points != 140 {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	if registry.Len() != 0 {
		t.Fatalf("completed session must be dropped from the registry")
	}
}

func TestPersistenceFailureDoesNotAffectResult(t *testing.T) {
	ctx := context.Background()
	registry := memory.NewSessionRegistry()
	service := app.NewQuizService(registry, &staticSource{questions: tenQuestions()}, failingAttemptStore{}, nil, nil)

	snap, err := service.StartSession(ctx, "u1", "geography", "easy")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	var last app.Snapshot
	for i := 0; i < 10; i++ {
		if _, err := service.SubmitAnswer(snap.SessionID, "right"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		last, err = service.Advance(ctx, snap.SessionID)
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if last.State != app.StateCompleted || last.Result == nil || last.Result.PointsEarned != 100 {
		t.Fatalf("expected full result despite persistence failure, got %+v", last)
	}
}

func TestAbortSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	registry := memory.NewSessionRegistry()
	attempts := memory.NewAttemptStore()
	service := app.NewQuizService(registry, &staticSource{questions: tenQuestions()}, attempts, nil, nil)

	snap, err := service.StartSession(ctx, "u1", "history", "hard")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.SubmitAnswer(snap.SessionID, "right"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	service.Abort(snap.SessionID)

	if len(attempts.Attempts()) != 0 {
		t.Fatalf("aborted session must not be persisted")
	}
	if _, err := service.SubmitAnswer(snap.SessionID, "right"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestUnknownSessionOperations(t *testing.T) {
	service := app.NewQuizService(memory.NewSessionRegistry(), &staticSource{questions: tenQuestions()}, nil, nil, nil)

	if _, err := service.SubmitAnswer("missing", "right"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := service.Advance(context.Background(), "missing"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, _, err := service.Subscribe("missing"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRecommendationsWrapUpstreamFailures(t *testing.T) {
	service := app.NewQuizService(memory.NewSessionRegistry(), &staticSource{questions: tenQuestions()}, nil, nil, nil)

	if _, err := service.Recommendations(context.Background(), 10); !errors.Is(err, domain.ErrRecommendation) {
		t.Fatalf("expected ErrRecommendation without a recommender, got %v", err)
	}
}
