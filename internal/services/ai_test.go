package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOpenAI(t *testing.T, content string) *AIService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestAIService_SuggestSmartFields(t *testing.T) {
	ai := newFakeOpenAI(t, "```json\n{\"specific\":\"Run 5k\",\"measurable\":\"Log runs\",\"attainable\":\"Start slow\",\"relevant\":\"Health\",\"timeBound\":\"12 weeks\",\"weeklyTrackingTotal\":3}\n```")

	suggestion, err := ai.SuggestSmartFields(context.Background(), "Run", "Get fitter", 12)
	require.NoError(t, err)
	assert.Equal(t, "Run 5k", suggestion.Specific)
	assert.Equal(t, 3, suggestion.WeeklyTrackingTotal)
}

func TestAIService_InvalidResponse(t *testing.T) {
	ai := newFakeOpenAI(t, "not json")

	_, err := ai.SuggestSmartFields(context.Background(), "Run", "Get fitter", 12)
	assert.Error(t, err)
}

func TestAIService_NilService(t *testing.T) {
	var ai *AIService
	_, err := ai.SuggestSmartFields(context.Background(), "Run", "", 12)
	assert.Error(t, err)
}
