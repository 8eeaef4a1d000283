package audio

import (
	"context"
	"time"
)

// Output / decoding constants
const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	BitDepth          = 16
)

// DefaultFormat matches ElevenLabs' mp3_44100_128 output.
var DefaultFormat = Format{SampleRate: DefaultSampleRate, Channels: DefaultChannels}

// Format describes interleaved signed 16-bit PCM.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) valid() bool { return f.SampleRate > 0 && f.Channels > 0 }

// Clip is a decoded, in-memory audio buffer ready for concatenation.
// Samples are interleaved by channel.
type Clip struct {
	Format  Format
	Samples []int16
}

// Frames returns the number of sample frames (samples per channel).
func (c Clip) Frames() int {
	if c.Format.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Format.Channels
}

// Duration returns the clip's playing time.
func (c Clip) Duration() time.Duration {
	if c.Format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.Format.SampleRate)
}

// Empty reports whether the clip holds no audio.
func (c Clip) Empty() bool { return c.Frames() == 0 }

// Decoder turns an encoded (MP3) payload into a Clip.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (Clip, error)
}

// Concat appends clips in order into one clip of the given format. Clips
// already in that format are copied sample-for-sample; others are converted
// first. Empty clips contribute nothing.
func Concat(format Format, clips ...Clip) Clip {
	total := 0
	for _, c := range clips {
		if c.Format == format {
			total += len(c.Samples)
		} else {
			total += estimateConvertedLen(c, format)
		}
	}

	out := Clip{Format: format, Samples: make([]int16, 0, total)}
	for _, c := range clips {
		if c.Empty() {
			continue
		}
		if c.Format != format {
			c = Convert(c, format)
		}
		out.Samples = append(out.Samples, c.Samples...)
	}
	return out
}

// OutputFormat picks the recording format: the first non-empty clip's
// format, or DefaultFormat when every clip is empty.
func OutputFormat(clips ...Clip) Format {
	for _, c := range clips {
		if !c.Empty() && c.Format.valid() {
			return c.Format
		}
	}
	return DefaultFormat
}
