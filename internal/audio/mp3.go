package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MP3 in-process with go-mp3. The decoder always yields
// 16-bit little-endian stereo at the stream's own sample rate.
type MP3Decoder struct{}

var _ Decoder = MP3Decoder{}

func NewMP3Decoder() MP3Decoder { return MP3Decoder{} }

func (MP3Decoder) Decode(ctx context.Context, data []byte) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, fmt.Errorf("mp3 decode: empty input")
	}
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}

	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Clip{}, fmt.Errorf("mp3 decode: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return Clip{}, fmt.Errorf("mp3 decode: %w", err)
	}

	return Clip{
		Format:  Format{SampleRate: dec.SampleRate(), Channels: 2},
		Samples: PCM16LE(pcm),
	}, nil
}

// PCM16LE converts raw signed 16-bit little-endian bytes into samples. A
// trailing odd byte is dropped.
func PCM16LE(raw []byte) []int16 {
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return samples
}
