package audio

// Convert remixes channels and resamples c into the target format. Channel
// mapping: mono is duplicated to every output channel; anything else is
// averaged down to mono first when the counts differ. Resampling is linear
// interpolation, which is adequate for speech and short effects.
func Convert(c Clip, to Format) Clip {
	if c.Format == to {
		return c
	}
	if c.Empty() || !c.Format.valid() || !to.valid() {
		return Clip{Format: to}
	}

	frames := remix(c, to.Channels)
	if c.Format.SampleRate != to.SampleRate {
		frames = resample(frames, to.Channels, c.Format.SampleRate, to.SampleRate)
	}
	return Clip{Format: to, Samples: frames}
}

// remix returns c's samples with outCh interleaved channels.
func remix(c Clip, outCh int) []int16 {
	inCh := c.Format.Channels
	if inCh == outCh {
		return c.Samples
	}

	n := c.Frames()
	out := make([]int16, n*outCh)
	for f := 0; f < n; f++ {
		var mono int16
		if inCh == 1 {
			mono = c.Samples[f]
		} else {
			sum := 0
			for ch := 0; ch < inCh; ch++ {
				sum += int(c.Samples[f*inCh+ch])
			}
			mono = int16(sum / inCh)
		}
		for ch := 0; ch < outCh; ch++ {
			out[f*outCh+ch] = mono
		}
	}
	return out
}

// resample converts interleaved samples between rates with linear
// interpolation. The output frame count is round(in * to / from).
func resample(samples []int16, channels, from, to int) []int16 {
	inFrames := len(samples) / channels
	if inFrames == 0 {
		return nil
	}
	outFrames := int((int64(inFrames)*int64(to) + int64(from)/2) / int64(from))
	out := make([]int16, outFrames*channels)

	step := float64(from) / float64(to)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * step
		i := int(pos)
		frac := pos - float64(i)
		next := i + 1
		if i >= inFrames-1 {
			i = inFrames - 1
			next = i
		}
		for ch := 0; ch < channels; ch++ {
			a := float64(samples[i*channels+ch])
			b := float64(samples[next*channels+ch])
			out[f*channels+ch] = int16(a + (b-a)*frac)
		}
	}
	return out
}

func estimateConvertedLen(c Clip, to Format) int {
	if c.Empty() || !c.Format.valid() || !to.valid() {
		return 0
	}
	return int(int64(c.Frames())*int64(to.SampleRate)/int64(c.Format.SampleRate)+1) * to.Channels
}
