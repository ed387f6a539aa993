package domain

import (
	"sort"
	"time"
)

// Difficulty is the question difficulty tier requested from the trivia source.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a client-supplied difficulty string.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), nil
	}
	return "", ErrInvalidDifficulty
}

// Question is one fetched multiple-choice question. Immutable once fetched;
// owned exclusively by the session it was fetched for.
type Question struct {
	Text             string     `json:"text"`
	CorrectAnswer    string     `json:"correctAnswer"`
	IncorrectAnswers []string   `json:"incorrectAnswers"`
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
}

// Choices returns the 3 incorrect answers plus the correct one in a single
// deterministic lexical order, so the correct position is unpredictable but
// stable for a given question.
func (q Question) Choices() []string {
	choices := make([]string, 0, len(q.IncorrectAnswers)+1)
	choices = append(choices, q.IncorrectAnswers...)
	choices = append(choices, q.CorrectAnswer)
	sort.Strings(choices)
	return choices
}

// AttemptRecord is the append-only row persisted for one completed session.
type AttemptRecord struct {
	UserID         string     `json:"userId"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	PointsEarned   int        `json:"pointsEarned"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// QuizResult is what a completed session reports upward, regardless of
// whether persistence succeeded.
type QuizResult struct {
	Score        int `json:"score"`
	Total        int `json:"total"`
	PointsEarned int `json:"pointsEarned"`
}

// LeaderboardEntry is one row of the cumulative points leaderboard.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// RecommendationSet is the proxy's successful output: up to three short
// age-appropriate quiz suggestions.
type RecommendationSet struct {
	Recommendations []string `json:"recommendations"`
	Age             int      `json:"age"`
}
