package app

import (
	"sync"
	"time"

	"ecoquiz-service/internal/domain"
)

// SessionState is the lifecycle phase of a quiz session.
type SessionState string

const (
	StateLoading   SessionState = "loading"
	StateActive    SessionState = "active"
	StateRevealed  SessionState = "revealed"
	StateCompleted SessionState = "completed"
	StateAborted   SessionState = "aborted"
)

// questionSeconds is the per-question countdown.
const questionSeconds = 30

// Snapshot is an immutable view of a session, pushed to subscribers on every
// state change and on every timer tick.
type Snapshot struct {
	SessionID      string             `json:"sessionId"`
	State          SessionState       `json:"state"`
	QuestionIndex  int                `json:"questionIndex"`
	TotalQuestions int                `json:"totalQuestions"`
	Question       string             `json:"question,omitempty"`
	Choices        []string           `json:"choices,omitempty"`
	TimeRemaining  int                `json:"timeRemaining"`
	Score          int                `json:"score"`
	SelectedAnswer string             `json:"selectedAnswer,omitempty"`
	Correct        bool               `json:"correct"`
	CorrectAnswer  string             `json:"correctAnswer,omitempty"`
	Result         *domain.QuizResult `json:"result,omitempty"`
}

// Session owns one quiz attempt from question load through completion or
// abort. All mutation happens under the mutex; the countdown goroutine and
// transport-facing calls both funnel through it, so a stray tick can never
// mutate a question that was already revealed or a session that was discarded.
type Session struct {
	id         string
	userID     string
	category   string
	difficulty domain.Difficulty
	questions  []domain.Question

	now       func() time.Time
	tickEvery time.Duration

	mu            sync.RWMutex
	state         SessionState
	index         int
	score         int
	selected      string
	revealed      bool
	correct       bool
	timeRemaining int
	lastActivity  time.Time
	result        *domain.QuizResult
	subscribers   map[chan Snapshot]struct{}

	timerStop chan struct{}
	timerOnce sync.Once
}

// NewSession builds a session in the Loading state with a real one-second timer.
func NewSession(id, userID, category string, difficulty domain.Difficulty, questions []domain.Question) *Session {
	return newSessionWithClock(id, userID, category, difficulty, questions, time.Now, time.Second)
}

// newSessionWithClock allows deterministic timestamps and manual ticking in tests
// (tickEvery == 0 disables the countdown goroutine).
func newSessionWithClock(id, userID, category string, difficulty domain.Difficulty, questions []domain.Question, now func() time.Time, tickEvery time.Duration) *Session {
	return &Session{
		id:           id,
		userID:       userID,
		category:     category,
		difficulty:   difficulty,
		questions:    questions,
		now:          now,
		tickEvery:    tickEvery,
		state:        StateLoading,
		lastActivity: now(),
		subscribers:  make(map[chan Snapshot]struct{}),
		timerStop:    make(chan struct{}),
	}
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) UserID() string                { return s.userID }
func (s *Session) Category() string              { return s.category }
func (s *Session) Difficulty() domain.Difficulty { return s.difficulty }

// Activate performs the Loading -> Active(0) transition and starts the countdown.
func (s *Session) Activate() Snapshot {
	s.mu.Lock()
	if s.state != StateLoading {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.state = StateActive
	s.enterQuestionLocked(0)
	snap := s.broadcastLocked()
	s.mu.Unlock()

	if s.tickEvery > 0 {
		go s.runTimer()
	}
	return snap
}

func (s *Session) enterQuestionLocked(index int) {
	s.index = index
	s.selected = ""
	s.revealed = false
	s.correct = false
	s.timeRemaining = questionSeconds
	s.lastActivity = s.now()
}

func (s *Session) runTimer() {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Tick()
		case <-s.timerStop:
			return
		}
	}
}

// Tick elapses one second of the current question's countdown. Reaching zero
// while unrevealed is equivalent to submitting a blank answer.
func (s *Session) Tick() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.revealed {
		return s.snapshotLocked()
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.submitLocked("")
	}
	return s.broadcastLocked()
}

// SubmitAnswer locks in an answer and reveals correctness. A second call for
// the same question is a no-op: the revealed flag guards double-scoring.
func (s *Session) SubmitAnswer(answer string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.revealed {
		return s.snapshotLocked()
	}
	s.submitLocked(answer)
	return s.broadcastLocked()
}

func (s *Session) submitLocked(answer string) {
	question := s.questions[s.index]
	s.selected = answer
	s.correct = answer == question.CorrectAnswer
	if s.correct {
		s.score++
	}
	s.revealed = true
	s.state = StateRevealed
	s.lastActivity = s.now()
}

// Advance moves from Revealed(i) to Active(i+1), or to Completed after the
// last question. Only valid once the current answer has been revealed.
func (s *Session) Advance() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateCompleted, StateAborted:
		return s.snapshotLocked(), domain.ErrSessionFinished
	case StateRevealed:
	default:
		return s.snapshotLocked(), domain.ErrNotRevealed
	}

	if s.index+1 < len(s.questions) {
		s.state = StateActive
		s.enterQuestionLocked(s.index + 1)
		return s.broadcastLocked(), nil
	}

	s.state = StateCompleted
	s.result = &domain.QuizResult{
		Score:        s.score,
		Total:        len(s.questions),
		PointsEarned: domain.PointsEarned(s.score, len(s.questions), s.difficulty),
	}
	s.lastActivity = s.now()
	s.stopTimerLocked()
	return s.broadcastLocked(), nil
}

// Abort discards the session from any state before Completed: the timer is
// stopped and no result is ever produced.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted || s.state == StateAborted {
		return
	}
	s.state = StateAborted
	s.lastActivity = s.now()
	s.stopTimerLocked()
	s.broadcastLocked()
}

func (s *Session) stopTimerLocked() {
	s.timerOnce.Do(func() { close(s.timerStop) })
}

// Result returns the final outcome once the session is Completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

// Terminal reports whether the session reached Completed or Aborted.
func (s *Session) Terminal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateCompleted || s.state == StateAborted
}

// LastActivity is the time of the last state transition; the reaper uses it
// to abort abandoned sessions.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so a slow reader never blocks
			// the timer goroutine.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:      s.id,
		State:          s.state,
		QuestionIndex:  s.index,
		TotalQuestions: len(s.questions),
		TimeRemaining:  s.timeRemaining,
		Score:          s.score,
		Result:         s.result,
	}
	if s.state == StateActive || s.state == StateRevealed {
		question := s.questions[s.index]
		snap.Question = question.Text
		snap.Choices = question.Choices()
	}
	if s.revealed && s.state == StateRevealed {
		snap.SelectedAnswer = s.selected
		snap.Correct = s.correct
		snap.CorrectAnswer = s.questions[s.index].CorrectAnswer
	}
	return snap
}
