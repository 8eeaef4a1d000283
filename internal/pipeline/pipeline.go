package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bobarin/podcastify/internal/audio"
	"github.com/bobarin/podcastify/internal/script"
)

// Pipeline turns a script into a recording on disk.
type Pipeline struct {
	synth     *Synthesizer
	assembler *audio.Assembler
	log       zerolog.Logger
}

func New(synth *Synthesizer, assembler *audio.Assembler, log zerolog.Logger) *Pipeline {
	return &Pipeline{synth: synth, assembler: assembler, log: log}
}

// Produce classifies text, synthesizes every speakable line and assembles
// the intro plus clips into a WAV file. It returns the filename only.
// Nothing is written when synthesis fails.
func (p *Pipeline) Produce(ctx context.Context, text string) (string, error) {
	start := time.Now()

	lines := script.Classify(text)
	speakable := script.Speakable(lines)

	if ignored := script.CountIgnoredText(text, lines); ignored > 0 {
		p.log.Debug().Int("ignored_lines", ignored).Msg("script has unprefixed text lines, dropping them")
	}
	p.log.Info().
		Int("lines", len(lines)).
		Int("speakable", len(speakable)).
		Msg("synthesizing script")

	clips, err := p.synth.SynthesizeAll(ctx, speakable)
	if err != nil {
		p.log.Error().Err(err).Msg("synthesis aborted")
		return "", err
	}

	filename, err := p.assembler.Assemble(ctx, clips)
	if err != nil {
		p.log.Error().Err(err).Msg("assembly failed")
		return "", err
	}

	p.log.Info().
		Str("file", filename).
		Int("clips", len(clips)).
		Dur("took", time.Since(start)).
		Msg("recording produced")

	return filename, nil
}
