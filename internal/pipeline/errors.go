package pipeline

import (
	"errors"
	"fmt"

	"github.com/bobarin/podcastify/internal/models"
)

// ErrNothingToSynthesize is returned by Synthesize for Ignored lines.
var ErrNothingToSynthesize = errors.New("line has nothing to synthesize")

// SynthesisError is a failed speaker utterance. It aborts the whole request.
type SynthesisError struct {
	Line models.ScriptLine
	Err  error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed for line %d (%s): %v", e.Line.Index, e.Line.Label(), e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// SoundEffectError is a failed sound-effect cue. It is logged and the cue
// is dropped from the recording.
type SoundEffectError struct {
	Line models.ScriptLine
	Err  error
}

func (e *SoundEffectError) Error() string {
	return fmt.Sprintf("sound effect failed for line %d (%q): %v", e.Line.Index, e.Line.Text, e.Err)
}

func (e *SoundEffectError) Unwrap() error { return e.Err }
