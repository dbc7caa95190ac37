package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// TodoGenerator turns free text into todo drafts.
type TodoGenerator interface {
	GenerateTodosFromText(ctx context.Context, text string) ([]TodoDraft, error)
}

// AIService drafts todos with an OpenAI chat model.
type AIService struct {
	client *openai.Client
	model  string
	now    Clock
}

// TodoDraft is a suggested todo. Drafts are never stored by the generator.
type TodoDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
		now:    time.Now,
	}
}

// GenerateTodosFromText asks the model for todos found in text.
func (s *AIService) GenerateTodosFromText(ctx context.Context, text string) ([]TodoDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You extract actionable todos from text.

Current time: %s

Text:
%s

Reply with a JSON array only, in this shape:
[
  {
    "title": "short todo title",
    "description": "details",
    "priority": "low | medium | high",
    "due_date": "RFC 3339 timestamp such as 2025-10-28T23:59:59Z, or null when no deadline is stated"
  }
]

Rules:
- Return [] when the text contains no todo
- Resolve relative deadlines ("tomorrow", "next week") against the current time
- No prose outside the JSON`, s.now().Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseTodoDrafts(resp.Choices[0].Message.Content)
}

// parseTodoDrafts decodes the model reply, tolerating a fenced code block.
func parseTodoDrafts(content string) ([]TodoDraft, error) {
	body := strings.TrimSpace(content)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")

	var drafts []TodoDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return drafts, nil
}
