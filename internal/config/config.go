package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LLM providers accepted in LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Audio decoders accepted in AUDIO_DECODER.
const (
	DecoderMP3    = "mp3"
	DecoderFFmpeg = "ffmpeg"
)

type Config struct {
	// Server
	APIPort            string `env:"API_PORT" envDefault:"8080"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	BackendAPIKey      string `env:"BACKEND_API_KEY"`      // empty = no auth, dev mode
	CorsAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"` // comma-separated, empty = *

	// Language generation (script writing)
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMModel    string `env:"LLM_MODEL"` // empty = provider default
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIURL   string `env:"OPENAI_BASE_URL"`
	GeminiKey   string `env:"GEMINI_API_KEY"`
	GeminiURL   string `env:"GEMINI_BASE_URL"` // empty = SDK default

	// ElevenLabs (speech + sound effects)
	ElevenLabsKey    string `env:"XI_API_KEY"`
	ElevenLabsURL    string `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	Speaker1VoiceID  string `env:"SPEAKER1_VOICE_ID" envDefault:"L0Dsvb3SLTyegXwtm47J"`
	Speaker2VoiceID  string `env:"SPEAKER2_VOICE_ID" envDefault:"gDnGxUcsitTxRiGHr904"`
	TTSModel         string `env:"TTS_MODEL" envDefault:"eleven_monolingual_v1"`
	SynthConcurrency int    `env:"SYNTH_CONCURRENCY" envDefault:"1"`

	// Audio
	AudioDir     string `env:"AUDIO_DIR" envDefault:"audio_files"`
	IntroFile    string `env:"INTRO_FILE" envDefault:"intro.mp3"`
	AudioDecoder string `env:"AUDIO_DECODER" envDefault:"mp3"`
	FFmpegPath   string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	// Article fetching for /convert
	ArticleAllowPrivateHosts bool `env:"ARTICLE_ALLOW_PRIVATE_HOSTS" envDefault:"false"`
}

// Load reads .env (if present) and the process environment, then validates
// the result. Missing credentials are reported as errors so main can exit.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required credentials and enumerated settings.
func (c *Config) Validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.AudioDecoder = strings.ToLower(strings.TrimSpace(c.AudioDecoder))

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want openai or gemini)", c.LLMProvider)
	}

	if c.ElevenLabsKey == "" {
		return fmt.Errorf("XI_API_KEY is required")
	}

	switch c.AudioDecoder {
	case DecoderMP3, DecoderFFmpeg:
	default:
		return fmt.Errorf("unsupported AUDIO_DECODER %q (want mp3 or ffmpeg)", c.AudioDecoder)
	}

	if c.SynthConcurrency < 1 {
		c.SynthConcurrency = 1
	}

	return nil
}

// EnsureAudioDir creates the recordings directory if it doesn't exist.
func (c *Config) EnsureAudioDir() error {
	if err := os.MkdirAll(c.AudioDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audio dir %s: %w", c.AudioDir, err)
	}
	return nil
}
