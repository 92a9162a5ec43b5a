package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "meeting-summarizer/internal/app/errors"
)

// OpenAISummarizer generates summaries through an OpenAI-compatible chat
// completion endpoint. Useful when no local Ollama server is available.
type OpenAISummarizer struct {
	client *openai.Client
}

// NewOpenAISummarizer builds a summarizer against api.openai.com or, when
// baseURL is set, any compatible server.
func NewOpenAISummarizer(apiKey, baseURL string) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISummarizer{client: openai.NewClientWithConfig(cfg)}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req.Transcript, req.Context),
			},
		},
	})
	if err != nil {
		return "", apperrors.ServiceUnavailable(err, "chat completion failed for model %s", model)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.MalformedResponse(fmt.Errorf("no choices in response"), "chat completion for model %s", model)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
