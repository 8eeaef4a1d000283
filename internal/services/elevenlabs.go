package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// ElevenLabs Text-to-Speech + Sound Generation
// Text-to-speech: POST /v1/text-to-speech/{voice_id}/stream
// Sound effects:  POST /v1/sound-generation
// Both return MP3 (Accept: audio/mpeg).
// ---------------------------------------------------------------------------

const (
	ElevenLabsBaseURL      = "https://api.elevenlabs.io"
	ElevenLabsDefaultModel = "eleven_monolingual_v1"

	// Voice settings used for every utterance.
	elevenLabsStability       = 0.5
	elevenLabsSimilarityBoost = 0.75

	// Sound effects are capped at 3 seconds.
	SoundEffectMaxSeconds     = 3.0
	soundEffectPromptInfluece = 0.5

	elevenLabsTimeout = 90 * time.Second
	maxErrorBodyLen   = 500
)

// ElevenLabsService handles speech and sound-effect generation via ElevenLabs.
type ElevenLabsService struct {
	apiKey  string
	baseURL string
	modelID string
	client  *http.Client
	log     zerolog.Logger
}

// Ensure ElevenLabsService implements SpeechService at compile time.
var _ SpeechService = (*ElevenLabsService)(nil)

// ElevenLabsOptions overrides service defaults. Zero values keep the default.
type ElevenLabsOptions struct {
	BaseURL string
	ModelID string
	Client  *http.Client
}

func NewElevenLabsService(apiKey string, opts ElevenLabsOptions, log zerolog.Logger) *ElevenLabsService {
	s := &ElevenLabsService{
		apiKey:  apiKey,
		baseURL: ElevenLabsBaseURL,
		modelID: ElevenLabsDefaultModel,
		client:  &http.Client{Timeout: elevenLabsTimeout},
		log:     log,
	}
	if opts.BaseURL != "" {
		s.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.ModelID != "" {
		s.modelID = opts.ModelID
	}
	if opts.Client != nil {
		s.client = opts.Client
	}
	return s
}

// ---------------------------------------------------------------------------
// Request types
// ---------------------------------------------------------------------------

type elevenLabsTTSRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsSoundRequest struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
	PromptInfluence float64 `json:"prompt_influence"`
}

// TextToSpeech converts text to speech with the given voice.
func (s *ElevenLabsService) TextToSpeech(ctx context.Context, voiceID, text string) ([]byte, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("ElevenLabs voice ID is empty")
	}

	reqBody := elevenLabsTTSRequest{
		Text:    text,
		ModelID: s.modelID,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       elevenLabsStability,
			SimilarityBoost: elevenLabsSimilarityBoost,
		},
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", s.baseURL, url.PathEscape(voiceID))

	s.log.Debug().
		Str("voice_id", voiceID).
		Str("model", s.modelID).
		Int("text_len", len(text)).
		Msg("generating speech")

	audio, err := s.post(ctx, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs text-to-speech (voice=%s): %w", voiceID, err)
	}

	s.log.Debug().Str("voice_id", voiceID).Int("bytes", len(audio)).Msg("speech generated")
	return audio, nil
}

// SoundEffect generates a sound effect of at most SoundEffectMaxSeconds.
func (s *ElevenLabsService) SoundEffect(ctx context.Context, description string) ([]byte, error) {
	reqBody := elevenLabsSoundRequest{
		Text:            description,
		DurationSeconds: SoundEffectMaxSeconds,
		PromptInfluence: soundEffectPromptInfluece,
	}

	s.log.Debug().Str("description", description).Msg("generating sound effect")

	audio, err := s.post(ctx, s.baseURL+"/v1/sound-generation", reqBody)
	if err != nil {
		return nil, fmt.Errorf("ElevenLabs sound generation: %w", err)
	}

	s.log.Debug().Int("bytes", len(audio)).Msg("sound effect generated")
	return audio, nil
}

// post sends a JSON body and returns the binary response.
func (s *ElevenLabsService) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	// The response body IS the audio file
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return audio, nil
}
