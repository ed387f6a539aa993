package trivia

import (
	"context"
	"fmt"
	"html"
	"time"

	"ecoquiz-service/internal/domain"
	"github.com/go-resty/resty/v2"
)

// questionCount is the fixed batch size fetched per session.
const questionCount = 10

// categoryIDs maps our category keys to Open Trivia DB category identifiers.
var categoryIDs = map[string]string{
	"general-knowledge": "9",
	"science-nature":    "17",
	"history":           "23",
	"geography":         "22",
}

const defaultCategoryID = "9"

// Client fetches multiple-choice questions from an Open Trivia DB compatible endpoint.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

type apiQuestion struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// FetchQuestions requests one batch of questions. Any network failure,
// non-success response, or empty result set is reported as a question fetch
// error; the caller must abort session creation rather than proceed empty.
func (c *Client) FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty) ([]domain.Question, error) {
	var out apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"amount":     fmt.Sprintf("%d", questionCount),
			"category":   categoryID(category),
			"difficulty": string(difficulty),
			"type":       "multiple",
		}).
		SetResult(&out).
		Get("/api.php")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionFetch, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: trivia API returned %d", domain.ErrQuestionFetch, resp.StatusCode())
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("%w: no questions available", domain.ErrQuestionFetch)
	}

	questions := make([]domain.Question, 0, len(out.Results))
	for _, q := range out.Results {
		questions = append(questions, decodeQuestion(q))
	}
	return questions, nil
}

// decodeQuestion strips the HTML entity encoding the trivia API applies to
// all question and answer text.
func decodeQuestion(q apiQuestion) domain.Question {
	incorrect := make([]string, len(q.IncorrectAnswers))
	for i, a := range q.IncorrectAnswers {
		incorrect[i] = html.UnescapeString(a)
	}
	return domain.Question{
		Text:             html.UnescapeString(q.Question),
		CorrectAnswer:    html.UnescapeString(q.CorrectAnswer),
		IncorrectAnswers: incorrect,
		Category:         html.UnescapeString(q.Category),
		Difficulty:       domain.Difficulty(q.Difficulty),
	}
}

func categoryID(category string) string {
	if id, ok := categoryIDs[category]; ok {
		return id
	}
	return defaultCategoryID
}
