package models

import (
	"strconv"
	"strings"
)

// Enums
type Style string

const (
	StylePodcast Style = "podcast"
	StyleNews    Style = "news"
)

// Valid reports whether s names a known prompt template.
func (s Style) Valid() bool {
	switch s {
	case StylePodcast, StyleNews:
		return true
	}
	return false
}

type LineKind string

const (
	LineKindSpeaker     LineKind = "speaker"
	LineKindSoundEffect LineKind = "sound_effect"
	LineKindIgnored     LineKind = "ignored"
)

// Script line prefixes produced by the script prompts.
const (
	PrefixSpeaker1    = "Speaker 1: "
	PrefixSpeaker2    = "Speaker 2: "
	PrefixSoundEffect = "Sound effect: "
)

// ScriptLine is one classified line of a generated script.
type ScriptLine struct {
	Index   int      `json:"index"`             // zero-based line number in the script
	Kind    LineKind `json:"kind"`              // speaker, sound_effect or ignored
	Speaker int      `json:"speaker,omitempty"` // 1 or 2 for speaker lines
	Text    string   `json:"text,omitempty"`    // utterance or sound-effect description
}

func (l ScriptLine) IsSpeaker() bool     { return l.Kind == LineKindSpeaker }
func (l ScriptLine) IsSoundEffect() bool { return l.Kind == LineKindSoundEffect }
func (l ScriptLine) IsIgnored() bool     { return l.Kind == LineKindIgnored }

// Label is a short human-readable tag used in logs and error messages.
func (l ScriptLine) Label() string {
	switch l.Kind {
	case LineKindSpeaker:
		return "Speaker " + strconv.Itoa(l.Speaker)
	case LineKindSoundEffect:
		return "Sound effect"
	default:
		return "ignored"
	}
}

// Request/Response DTOs

type ConvertRequest struct {
	Article string `json:"article"`
	Style   Style  `json:"style"`
	URL     string `json:"url,omitempty"` // fetched when article is empty
}

// Normalize trims the URL. Article and style are passed through untouched:
// style matching is exact.
func (r *ConvertRequest) Normalize() {
	r.URL = strings.TrimSpace(r.URL)
}

// ConvertResponse carries exactly one of Script (podcast) or Article (news).
type ConvertResponse struct {
	Script  string `json:"script,omitempty"`
	Article string `json:"article,omitempty"`
}

type GenerateAudioRequest struct {
	Script string `json:"script"`
}

type GenerateAudioResponse struct {
	AudioFilename string `json:"audio_filename"`
}
