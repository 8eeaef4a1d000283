package script

import (
	"strings"

	"github.com/bobarin/podcastify/internal/models"
)

// Classify splits a generated script into lines and tags each one by its
// literal prefix. Exactly one ScriptLine is returned per input line, in order.
//
// Matching is deliberately strict: no leading-whitespace trimming and no case
// folding, so "   Speaker 1: hi" and "speaker 1: hi" are Ignored. Continuation
// lines without a prefix are Ignored rather than merged into the previous
// utterance. The only normalization is dropping a trailing '\r' so CRLF
// scripts classify like LF scripts.
func Classify(text string) []models.ScriptLine {
	rawLines := strings.Split(text, "\n")
	lines := make([]models.ScriptLine, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = ClassifyLine(strings.TrimSuffix(raw, "\r"))
		lines[i].Index = i
	}
	return lines
}

// ClassifyLine classifies a single line. Index is left at zero.
func ClassifyLine(line string) models.ScriptLine {
	switch {
	case strings.HasPrefix(line, models.PrefixSpeaker1):
		return models.ScriptLine{Kind: models.LineKindSpeaker, Speaker: 1, Text: afterSeparator(line)}
	case strings.HasPrefix(line, models.PrefixSpeaker2):
		return models.ScriptLine{Kind: models.LineKindSpeaker, Speaker: 2, Text: afterSeparator(line)}
	case strings.HasPrefix(line, models.PrefixSoundEffect):
		return models.ScriptLine{Kind: models.LineKindSoundEffect, Text: afterSeparator(line)}
	default:
		return models.ScriptLine{Kind: models.LineKindIgnored}
	}
}

// afterSeparator returns everything after the first ": ".
func afterSeparator(line string) string {
	_, rest, _ := strings.Cut(line, ": ")
	return rest
}

// Speakable drops Ignored lines, keeping the rest in order.
func Speakable(lines []models.ScriptLine) []models.ScriptLine {
	out := make([]models.ScriptLine, 0, len(lines))
	for _, l := range lines {
		if !l.IsIgnored() {
			out = append(out, l)
		}
	}
	return out
}

// CountIgnoredText counts Ignored lines that are not blank. A high count
// usually means the language model stopped re-prefixing continuation lines.
func CountIgnoredText(text string, lines []models.ScriptLine) int {
	rawLines := strings.Split(text, "\n")
	n := 0
	for _, l := range lines {
		if l.IsIgnored() && l.Index < len(rawLines) && strings.TrimSpace(rawLines[l.Index]) != "" {
			n++
		}
	}
	return n
}
