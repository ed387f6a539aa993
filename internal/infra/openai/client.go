package openai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL   = "https://api.openai.com"
	defaultModel     = "gpt-5-mini-2025-08-07"
	defaultMaxTokens = 500

	systemPrompt = "You are an educational AI assistant specializing in age-appropriate learning recommendations. Provide engaging, educational quiz suggestions that match the user's developmental stage."
)

// minLineLength filters out headings and stray fragments from the model output.
const minLineLength = 20

var numberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// Client calls a chat-completion endpoint to generate quiz recommendations
// from a user's age.
type Client struct {
	http      *resty.Client
	apiKey    string
	model     string
	maxTokens int
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(url) }
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:      resty.New().SetBaseURL(defaultBaseURL).SetTimeout(30 * time.Second),
		apiKey:    apiKey,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Recommend asks the model for exactly three age-appropriate environmental
// education quiz recommendations.
func (c *Client) Recommend(ctx context.Context, age int) ([]string, error) {
	if c.apiKey == "" {
		return nil, errors.New("API key not configured")
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: buildPrompt(age)},
			},
			MaxCompletionTokens: c.maxTokens,
		}).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("completion API returned %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("completion response contained no choices")
	}

	recommendations := ParseRecommendations(out.Choices[0].Message.Content)
	if len(recommendations) == 0 {
		return nil, errors.New("completion response contained no usable lines")
	}
	return recommendations, nil
}

func buildPrompt(age int) string {
	return fmt.Sprintf(`Generate 3 specific quiz recommendations for a %d-year-old student interested in environmental education. Consider their age-appropriate learning level and interests.

For each recommendation, provide:
1. A specific quiz topic/category
2. Why it's suitable for their age group
3. What they'll learn

Format each recommendation as a brief, engaging paragraph (2-3 sentences max). Focus on environmental topics, science, nature, geography, and general knowledge that would be educational and fun for someone of this age.`, age)
}

// ParseRecommendations splits the raw model output into at most three
// recommendation lines: short fragments are discarded and leading list
// numbering is stripped.
func ParseRecommendations(content string) []string {
	var recommendations []string
	for _, line := range strings.Split(content, "\n") {
		if len(strings.TrimSpace(line)) <= minLineLength {
			continue
		}
		recommendations = append(recommendations, strings.TrimSpace(numberPrefix.ReplaceAllString(strings.TrimSpace(line), "")))
		if len(recommendations) == 3 {
			break
		}
	}
	return recommendations
}
