package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const GeminiDefaultModel = "gemini-2.5-flash"

// GeminiService writes scripts with the Gemini API via the genai SDK.
type GeminiService struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGeminiService builds a client for the Gemini API. An empty baseURL
// keeps the SDK default endpoint.
func NewGeminiService(ctx context.Context, apiKey, baseURL, model string, log zerolog.Logger) (*GeminiService, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if model == "" {
		model = GeminiDefaultModel
	}

	return &GeminiService{client: client, model: model, log: log}, nil
}

// Generate sends prompt as a single user turn and returns the concatenated
// text parts of the first candidate.
func (s *GeminiService) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text in gemini response")
	}

	s.log.Debug().Str("model", s.model).Int("text_len", len(text)).Msg("gemini completion")
	return text, nil
}
