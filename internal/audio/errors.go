package audio

import "fmt"

// IntroLoadError is logged when the intro asset cannot be read or decoded.
// Assembly continues with an empty intro.
type IntroLoadError struct {
	Path string
	Err  error
}

func (e *IntroLoadError) Error() string {
	return fmt.Sprintf("failed to load intro %s: %v", e.Path, e.Err)
}

func (e *IntroLoadError) Unwrap() error { return e.Err }

// WriteError reports a failure writing the assembled recording.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write recording %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
