package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	OpenAIDefaultModel = openai.GPT4o
	llmTimeout         = 2 * time.Minute
)

// OpenAIService writes scripts through the chat completions endpoint.
type OpenAIService struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIService builds a client for the given key. baseURL may be empty
// to use the public endpoint; model may be empty to use OpenAIDefaultModel.
func NewOpenAIService(apiKey, baseURL, model string, log zerolog.Logger) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: llmTimeout}

	if model == "" {
		model = OpenAIDefaultModel
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

// Generate sends prompt as a single user message and returns the first
// choice's content untouched.
func (s *OpenAIService) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	s.log.Debug().
		Str("model", s.model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("openai completion")

	return resp.Choices[0].Message.Content, nil
}
