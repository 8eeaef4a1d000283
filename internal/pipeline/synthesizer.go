package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bobarin/podcastify/internal/audio"
	"github.com/bobarin/podcastify/internal/metrics"
	"github.com/bobarin/podcastify/internal/models"
)

// SpeechClient renders utterances and sound effects to encoded audio.
// services.ElevenLabsService satisfies it.
type SpeechClient interface {
	TextToSpeech(ctx context.Context, voiceID, text string) ([]byte, error)
	SoundEffect(ctx context.Context, description string) ([]byte, error)
}

// Voices maps speaker 1 and 2 to provider voice IDs.
type Voices struct {
	Speaker1 string
	Speaker2 string
}

// Synthesizer turns classified script lines into decoded clips.
type Synthesizer struct {
	speech      SpeechClient
	decoder     audio.Decoder
	voices      Voices
	concurrency int
	log         zerolog.Logger
}

// NewSynthesizer builds a synthesizer. concurrency below 1 means sequential.
func NewSynthesizer(speech SpeechClient, decoder audio.Decoder, voices Voices, concurrency int, log zerolog.Logger) *Synthesizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Synthesizer{
		speech:      speech,
		decoder:     decoder,
		voices:      voices,
		concurrency: concurrency,
		log:         log,
	}
}

func (s *Synthesizer) voiceFor(speaker int) (string, error) {
	switch speaker {
	case 1:
		return s.voices.Speaker1, nil
	case 2:
		return s.voices.Speaker2, nil
	}
	return "", fmt.Errorf("unknown speaker %d", speaker)
}

// Synthesize makes one provider call for line and decodes the result.
// Errors are returned unwrapped; SynthesizeAll decides their severity.
func (s *Synthesizer) Synthesize(ctx context.Context, line models.ScriptLine) (audio.Clip, error) {
	var (
		data []byte
		err  error
	)

	switch line.Kind {
	case models.LineKindSpeaker:
		voice, verr := s.voiceFor(line.Speaker)
		if verr != nil {
			return audio.Clip{}, verr
		}
		data, err = s.speech.TextToSpeech(ctx, voice, line.Text)
	case models.LineKindSoundEffect:
		data, err = s.speech.SoundEffect(ctx, line.Text)
	default:
		return audio.Clip{}, ErrNothingToSynthesize
	}
	if err != nil {
		return audio.Clip{}, err
	}

	clip, err := s.decoder.Decode(ctx, data)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("decode: %w", err)
	}
	return clip, nil
}

// SynthesizeAll synthesizes every non-ignored line and returns the clips in
// line order. A failed sound effect is logged and omitted. A failed speaker
// line cancels outstanding calls and returns a *SynthesisError.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, lines []models.ScriptLine) ([]audio.Clip, error) {
	// One slot per line, written by exactly one goroutine, read after Wait.
	results := make([]audio.Clip, len(lines))
	ok := make([]bool, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, line := range lines {
		if line.IsIgnored() {
			continue
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			// g.Go may hand out a slot freed by a failed line after gctx
			// was cancelled.
			if err := gctx.Err(); err != nil {
				return err
			}

			clip, err := s.Synthesize(gctx, line)
			kind := string(line.Kind)

			if err != nil {
				metrics.SynthesisCallsTotal.WithLabelValues(kind, "error").Inc()
				if !line.IsSoundEffect() {
					return &SynthesisError{Line: line, Err: err}
				}
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				sfxErr := &SoundEffectError{Line: line, Err: err}
				s.log.Warn().Err(sfxErr).Int("line", line.Index).Msg("skipping sound effect")
				return nil
			}

			metrics.SynthesisCallsTotal.WithLabelValues(kind, "ok").Inc()
			s.log.Debug().
				Int("line", line.Index).
				Str("label", line.Label()).
				Dur("duration", clip.Duration()).
				Msg("line synthesized")

			results[i] = clip
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var synthErr *SynthesisError
		if errors.As(err, &synthErr) {
			return nil, synthErr
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clips := make([]audio.Clip, 0, len(lines))
	for i := range lines {
		if ok[i] {
			clips = append(clips, results[i])
		}
	}
	return clips, nil
}
