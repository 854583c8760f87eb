package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

// SmartSuggestion is a proposed SMART breakdown for a goal.
type SmartSuggestion struct {
	Specific            string `json:"specific"`
	Measurable          string `json:"measurable"`
	Attainable          string `json:"attainable"`
	Relevant            string `json:"relevant"`
	TimeBound           string `json:"timeBound"`
	WeeklyTrackingTotal int    `json:"weeklyTrackingTotal"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// NewAIServiceWithConfig creates an AIService for a custom endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
	}
}

// SuggestSmartFields asks the model to rewrite a goal as SMART fields.
func (s *AIService) SuggestSmartFields(ctx context.Context, title, description string, cycleDuration int) (*SmartSuggestion, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You help people turn goals into SMART goals tracked over a cycle of %d weeks.

Goal title: %s
Goal description: %s

Reply with a single JSON object in this shape:
{
  "specific": "what exactly will be accomplished",
  "measurable": "how progress will be measured each week",
  "attainable": "why this is realistic",
  "relevant": "why this matters to the person",
  "timeBound": "the deadline and weekly rhythm",
  "weeklyTrackingTotal": 3
}

weeklyTrackingTotal is how many times per week the person should complete the habit (an integer between 1 and 14).
Return only JSON, without explanations.`, cycleDuration, title, description)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
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

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var suggestion SmartSuggestion
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	if suggestion.WeeklyTrackingTotal < 1 {
		suggestion.WeeklyTrackingTotal = 1
	}

	return &suggestion, nil
}
