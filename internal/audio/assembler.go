package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bobarin/podcastify/internal/metrics"
)

const (
	// RecordingPrefix and RecordingExt frame every generated filename.
	RecordingPrefix = "podcast_"
	RecordingExt    = ".wav"

	// writeChunk is how many samples are handed to the WAV encoder at once.
	writeChunk = 64 * 1024

	wavFormatPCM = 1
)

// Assembler prefixes the intro to a sequence of clips and writes the result
// as a WAV file with a unique name under dir.
type Assembler struct {
	dir       string
	introPath string
	decoder   Decoder
	log       zerolog.Logger

	introMu     sync.Mutex
	introLoaded bool
	intro       Clip
}

func NewAssembler(dir, introPath string, decoder Decoder, log zerolog.Logger) *Assembler {
	return &Assembler{
		dir:       dir,
		introPath: introPath,
		decoder:   decoder,
		log:       log,
	}
}

// Dir returns the output directory.
func (a *Assembler) Dir() string { return a.dir }

// Intro returns the decoded intro. A successful load is cached and shared;
// a missing or undecodable intro yields an empty clip and is retried on the
// next call, so an asset restored at runtime is picked up without a restart.
func (a *Assembler) Intro() Clip {
	a.introMu.Lock()
	defer a.introMu.Unlock()

	if a.introLoaded {
		return a.intro
	}

	clip, err := a.loadIntro()
	if err != nil {
		metrics.IntroLoadFailuresTotal.Inc()
		a.log.Error().Err(err).Str("path", a.introPath).Msg("intro unavailable, continuing without it")
		return Clip{}
	}

	a.intro = clip
	a.introLoaded = true
	a.log.Info().
		Str("path", a.introPath).
		Dur("duration", clip.Duration()).
		Int("sample_rate", clip.Format.SampleRate).
		Msg("loaded intro")
	return a.intro
}

func (a *Assembler) loadIntro() (Clip, error) {
	if a.introPath == "" {
		return Clip{}, &IntroLoadError{Path: a.introPath, Err: errors.New("no intro configured")}
	}
	data, err := os.ReadFile(a.introPath)
	if err != nil {
		return Clip{}, &IntroLoadError{Path: a.introPath, Err: err}
	}
	clip, err := a.decoder.Decode(context.Background(), data)
	if err != nil {
		return Clip{}, &IntroLoadError{Path: a.introPath, Err: err}
	}
	return clip, nil
}

// Assemble concatenates intro + clips in order, writes podcast_<uuid>.wav and
// returns the filename (not the path).
func (a *Assembler) Assemble(ctx context.Context, clips []Clip) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	intro := a.Intro()
	all := make([]Clip, 0, len(clips)+1)
	all = append(all, intro)
	all = append(all, clips...)

	format := OutputFormat(all...)
	recording := Concat(format, all...)

	filename := RecordingPrefix + uuid.NewString() + RecordingExt
	path := filepath.Join(a.dir, filename)

	if err := WriteWAV(path, recording); err != nil {
		metrics.RecordingsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.RecordingsTotal.WithLabelValues("ok").Inc()
	metrics.RecordingDuration.Observe(recording.Duration().Seconds())
	a.log.Info().
		Str("file", filename).
		Int("clips", len(clips)).
		Dur("duration", recording.Duration()).
		Msg("recording written")

	return filename, nil
}

// WriteWAV writes c as 16-bit PCM WAV. A partially written file is removed.
func WriteWAV(path string, c Clip) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: path, Err: cerr}
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	format := c.Format
	if !format.valid() {
		format = DefaultFormat
	}

	enc := wav.NewEncoder(f, format.SampleRate, BitDepth, format.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
		SourceBitDepth: BitDepth,
		Data:           make([]int, 0, writeChunk),
	}

	for start := 0; ; start += writeChunk {
		end := min(start+writeChunk, len(c.Samples))
		buf.Data = buf.Data[:0]
		for _, s := range c.Samples[start:end] {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			return &WriteError{Path: path, Err: fmt.Errorf("encode: %w", err)}
		}
		if end >= len(c.Samples) {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("finalize: %w", err)}
	}
	return nil
}
