package domain

import "errors"

var (
	// ErrQuestionFetch covers any failure to load questions: network errors,
	// non-success responses, and empty result sets. Fatal to session creation.
	ErrQuestionFetch = errors.New("quiz questions could not be loaded")
	// ErrSessionNotFound is returned when no live session matches the given ID.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionFinished is returned for operations on a completed or aborted session.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrNotRevealed is returned when advancing before the current answer was revealed.
	ErrNotRevealed = errors.New("current question not yet revealed")
	// ErrInvalidDifficulty indicates an unsupported difficulty string.
	ErrInvalidDifficulty = errors.New("unknown difficulty")
	// ErrRecommendation covers any upstream failure of the recommendation proxy.
	ErrRecommendation = errors.New("recommendations unavailable")
)
