package services

import "context"

// ---------------------------------------------------------------------------
// SpeechService: common interface for speech / sound-effect providers.
// The pipeline only needs MP3 bytes back; decoding happens downstream so the
// provider stays a thin HTTP wrapper.
// ---------------------------------------------------------------------------

// SpeechService is implemented by ElevenLabsService.
type SpeechService interface {
	// TextToSpeech renders text with the given voice and returns MP3 bytes.
	TextToSpeech(ctx context.Context, voiceID, text string) ([]byte, error)

	// SoundEffect generates a short non-speech effect from a description
	// and returns MP3 bytes.
	SoundEffect(ctx context.Context, description string) ([]byte, error)
}
