package script

import (
	"errors"
	"fmt"

	"github.com/bobarin/podcastify/internal/models"
)

var (
	// ErrInvalidStyle is returned for a style other than podcast or news.
	// No outbound call is made.
	ErrInvalidStyle = errors.New("invalid style selected")

	// ErrEmptyArticle is returned when there is no article text to rewrite.
	ErrEmptyArticle = errors.New("article is empty")
)

// GenerationError wraps a failed language-service call.
type GenerationError struct {
	Style models.Style
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("script generation failed (style=%s): %v", e.Style, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
