package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("XI_API_KEY", "xi-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "https://api.elevenlabs.io", cfg.ElevenLabsURL)
	assert.Equal(t, "L0Dsvb3SLTyegXwtm47J", cfg.Speaker1VoiceID)
	assert.Equal(t, "gDnGxUcsitTxRiGHr904", cfg.Speaker2VoiceID)
	assert.Equal(t, "eleven_monolingual_v1", cfg.TTSModel)
	assert.Equal(t, 1, cfg.SynthConcurrency)
	assert.Equal(t, DecoderMP3, cfg.AudioDecoder)
	assert.Equal(t, "audio_files", cfg.AudioDir)
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "no openai key",
			env:     map[string]string{"OPENAI_API_KEY": "", "XI_API_KEY": "xi"},
			wantErr: "OPENAI_API_KEY is required",
		},
		{
			name:    "no gemini key",
			env:     map[string]string{"LLM_PROVIDER": "gemini", "GEMINI_API_KEY": "", "XI_API_KEY": "xi"},
			wantErr: "GEMINI_API_KEY is required",
		},
		{
			name:    "no speech key",
			env:     map[string]string{"OPENAI_API_KEY": "sk", "XI_API_KEY": ""},
			wantErr: "XI_API_KEY is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Enumerations(t *testing.T) {
	base := Config{OpenAIKey: "sk", ElevenLabsKey: "xi", LLMProvider: "OpenAI", AudioDecoder: " FFMPEG "}
	require.NoError(t, base.Validate())
	assert.Equal(t, ProviderOpenAI, base.LLMProvider)
	assert.Equal(t, DecoderFFmpeg, base.AudioDecoder)

	bad := Config{OpenAIKey: "sk", ElevenLabsKey: "xi", LLMProvider: "anthropic", AudioDecoder: "mp3"}
	assert.ErrorContains(t, bad.Validate(), "unsupported LLM_PROVIDER")

	bad = Config{OpenAIKey: "sk", ElevenLabsKey: "xi", LLMProvider: "openai", AudioDecoder: "flac"}
	assert.ErrorContains(t, bad.Validate(), "unsupported AUDIO_DECODER")

	zero := Config{OpenAIKey: "sk", ElevenLabsKey: "xi", LLMProvider: "openai", AudioDecoder: "mp3"}
	require.NoError(t, zero.Validate())
	assert.Equal(t, 1, zero.SynthConcurrency)
}

func TestEnsureAudioDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audio")
	cfg := Config{AudioDir: dir}
	require.NoError(t, cfg.EnsureAudioDir())
	assert.DirExists(t, dir)
}
