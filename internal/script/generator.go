package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobarin/podcastify/internal/metrics"
	"github.com/bobarin/podcastify/internal/models"
	"github.com/rs/zerolog"
)

// Token budgets per style.
const (
	podcastMaxTokens = 4096
	newsMaxTokens    = 4000
)

// TextGenerator is a language-generation backend. Implementations send a
// single user prompt and return the generated text verbatim.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Generator turns an article into a two-speaker script.
type Generator struct {
	llm TextGenerator
	log zerolog.Logger
}

func NewGenerator(llm TextGenerator, log zerolog.Logger) *Generator {
	return &Generator{llm: llm, log: log}
}

// Generate builds the style's prompt and asks the language service for a
// script. The result is returned as-is; nothing is reformatted or validated.
func (g *Generator) Generate(ctx context.Context, article string, style models.Style) (string, error) {
	if !style.Valid() {
		return "", ErrInvalidStyle
	}
	if strings.TrimSpace(article) == "" {
		return "", ErrEmptyArticle
	}

	prompt, maxTokens := BuildPrompt(article, style)

	g.log.Info().Str("style", string(style)).Int("article_len", len(article)).Msg("generating script")
	start := time.Now()

	text, err := g.llm.Generate(ctx, prompt, maxTokens)
	if err != nil {
		metrics.ScriptGenerationsTotal.WithLabelValues(string(style), "error").Inc()
		g.log.Error().Err(err).Str("style", string(style)).Msg("language service call failed")
		return "", &GenerationError{Style: style, Err: err}
	}

	metrics.ScriptGenerationsTotal.WithLabelValues(string(style), "ok").Inc()
	g.log.Info().
		Str("style", string(style)).
		Int("script_len", len(text)).
		Dur("took", time.Since(start)).
		Msg("script generated")

	return text, nil
}

// BuildPrompt returns the fixed instruction prompt and token budget for a
// valid style. Callers must check style.Valid first.
func BuildPrompt(article string, style models.Style) (string, int) {
	if style == models.StyleNews {
		return buildNewsPrompt(article), newsMaxTokens
	}
	return buildPodcastPrompt(article), podcastMaxTokens
}

func buildPodcastPrompt(article string) string {
	return fmt.Sprintf(`Generate a podcast script for two speakers based on the following article. Make it engaging, conversational, detailed and interesting. The questions should build on the answers and draw out personal insights.

Speaker 1 is Max and Speaker 2 is Anabelle. Speaker 1 should call Speaker 2 Anabelle and Speaker 2 should call Speaker 1 Max. Max asks the questions and Anabelle is the expert explaining. They should not compliment one another. The questions should be probing and ask for examples.

Do not instruct the speakers to laugh or chuckle; they will read exactly what you write. Only include the lines they are to speak.

Use '%s' and '%s' to distinguish between the speakers. Every line must start on a new line with its speaker identifier; if a speaker says more than one line, each of those lines must also start with 'Speaker 1:' or 'Speaker 2:'. Where there is a list of items, keep it on the same line for that speaker.

From time to time (at most 2 times), add a sound effect instruction using the format '%s' followed by a brief description of the sound. A sound effect must be no more than 3 seconds long. For example:

Sound effect: A soft whoosh

Here's the article:

%s`, strings.TrimSpace(models.PrefixSpeaker1), strings.TrimSpace(models.PrefixSpeaker2),
		strings.TrimSpace(models.PrefixSoundEffect), article)
}

func buildNewsPrompt(article string) string {
	return fmt.Sprintf(`Rewrite the following article into a news story in a clear, concise newsreader style. There should be two newsreaders: Speaker 1 is Max and Speaker 2 is Anabelle. The tone should be objective and professional, suitable for a general audience. Use '%s' and '%s' to distinguish between the speakers. Each speaker's line should start on a new line. Include relevant facts and potential impacts where appropriate. Do not include sound effects.

%s`, strings.TrimSpace(models.PrefixSpeaker1), strings.TrimSpace(models.PrefixSpeaker2), article)
}
