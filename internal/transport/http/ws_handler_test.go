package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
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

func twoQuestions() []domain.Question {
	return []domain.Question{
		{Text: "q0", CorrectAnswer: "right0", IncorrectAnswers: []string{"a0", "b0", "c0"}, Difficulty: domain.DifficultyEasy},
		{Text: "q1", CorrectAnswer: "right1", IncorrectAnswers: []string{"a1", "b1", "c1"}, Difficulty: domain.DifficultyEasy},
	}
}

func newWSTestServer(t *testing.T, source app.QuestionSource, attempts app.AttemptStore) *httptest.Server {
	t.Helper()
	service := app.NewQuizService(memory.NewSessionRegistry(), source, attempts, nil, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips interleaved frames (timer ticks arrive as extra question
// frames) until the wanted type shows up.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == want {
			return msg.Payload
		}
		if msg.Type == "error" {
			t.Fatalf("unexpected error frame while waiting for %s: %v", want, msg.Payload)
		}
	}
	t.Fatalf("never received %s frame", want)
	return nil
}

func TestWebSocketQuizFlow(t *testing.T) {
	attempts := memory.NewAttemptStore()
	server := newWSTestServer(t, &staticSource{questions: twoQuestions()}, attempts)
	conn := dialWS(t, server, "category=history&difficulty=easy&userId=u1")

	question := readUntil(t, conn, "question")
	if question["question"] != "q0" {
		t.Fatalf("expected first question, got %v", question)
	}
	choices, ok := question["choices"].([]any)
	if !ok || len(choices) != 4 {
		t.Fatalf("expected 4 choices, got %v", question["choices"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"answer": "right0"}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	reveal := readUntil(t, conn, "reveal")
	if reveal["correct"] != true || reveal["score"] != float64(1) {
		t.Fatalf("expected correct reveal with score 1, got %v", reveal)
	}

	if err := conn.WriteJSON(map[string]any{"type": "next"}); err != nil {
		t.Fatalf("write next: %v", err)
	}
	question = readUntil(t, conn, "question")
	if question["question"] != "q1" {
		t.Fatalf("expected second question, got %v", question)
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"answer": "wrong"}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	readUntil(t, conn, "reveal")

	if err := conn.WriteJSON(map[string]any{"type": "next"}); err != nil {
		t.Fatalf("write next: %v", err)
	}
	completed := readUntil(t, conn, "completed")
	result, ok := completed["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result payload, got %v", completed)
	}
	if result["score"] != float64(1) || result["total"] != float64(2) {
		t.Fatalf("expected 1/2 result, got %v", result)
	}

	// Give the handler a moment to finish persistence.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(attempts.Attempts()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	recs := attempts.Attempts()
	if len(recs) != 1 || recs[0].UserID != "u1" || recs[0].Score != 1 {
		t.Fatalf("expected persisted attempt for u1, got %+v", recs)
	}
}

func TestWebSocketFetchFailureReportsError(t *testing.T) {
	server := newWSTestServer(t, &staticSource{err: domain.ErrQuestionFetch}, nil)
	conn := dialWS(t, server, "category=history&difficulty=easy&userId=u1")

	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error frame, got %s", msg.Type)
	}
}

func TestWebSocketRequiresCategoryAndDifficulty(t *testing.T) {
	server := newWSTestServer(t, &staticSource{questions: twoQuestions()}, nil)
	u := "ws" + server.URL[len("http"):] + "/ws?category=history"
	if _, _, err := websocket.DefaultDialer.Dial(u, nil); err == nil {
		t.Fatalf("expected handshake failure without difficulty")
	}
}

func TestWebSocketDisconnectAbortsWithoutPersistence(t *testing.T) {
	attempts := memory.NewAttemptStore()
	server := newWSTestServer(t, &staticSource{questions: twoQuestions()}, attempts)
	conn := dialWS(t, server, "category=history&difficulty=easy&userId=u1")

	readUntil(t, conn, "question")
	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"answer": "right0"}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	readUntil(t, conn, "reveal")
	conn.Close()

	time.Sleep(100 * time.Millisecond)
	if len(attempts.Attempts()) != 0 {
		t.Fatalf("disconnect before completion must not persist an attempt")
	}
}
