package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bobarin/podcastify/internal/audio"
)

// ---------------------------------------------------------------------------
// FFmpegService: decodes provider MP3 into raw PCM by piping through ffmpeg.
// An alternative to the pure-Go MP3 decoder for inputs it cannot handle.
// ---------------------------------------------------------------------------

const maxFFmpegStderr = 500

type FFmpegService struct {
	binary string
	format audio.Format
	log    zerolog.Logger
}

// Ensure FFmpegService implements audio.Decoder at compile time.
var _ audio.Decoder = (*FFmpegService)(nil)

// NewFFmpegService uses binary (default "ffmpeg") and decodes to the default
// 44.1 kHz stereo format.
func NewFFmpegService(binary string, log zerolog.Logger) *FFmpegService {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegService{binary: binary, format: audio.DefaultFormat, log: log}
}

// Available reports whether the configured binary can be found on PATH.
func (s *FFmpegService) Available() bool {
	_, err := exec.LookPath(s.binary)
	return err == nil
}

// Decode pipes data through ffmpeg and reads back s16le PCM.
func (s *FFmpegService) Decode(ctx context.Context, data []byte) (audio.Clip, error) {
	if len(data) == 0 {
		return audio.Clip{}, fmt.Errorf("ffmpeg decode: empty input")
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(s.format.SampleRate),
		"-ac", strconv.Itoa(s.format.Channels),
		"pipe:1",
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxFFmpegStderr {
			msg = msg[:maxFFmpegStderr]
		}
		return audio.Clip{}, fmt.Errorf("ffmpeg decode failed: %w (%s)", err, msg)
	}

	samples := audio.PCM16LE(stdout.Bytes())
	if len(samples) == 0 {
		return audio.Clip{}, fmt.Errorf("ffmpeg decode: no audio frames")
	}

	s.log.Debug().Int("in_bytes", len(data)).Int("samples", len(samples)).Msg("ffmpeg decoded")
	return audio.Clip{Format: s.format, Samples: samples}, nil
}
