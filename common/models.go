package common

import (
	"encoding/json"
	"fmt"
)

// Speaker identifies one of the two fixed characters. The set is closed:
// anything else in a script is rejected at parse time.
type Speaker string

const (
	SpeakerTsuno  Speaker = "tsuno"
	SpeakerMegane Speaker = "megane"
)

// SpeakerProfile bundles everything keyed by a speaker in one record so the
// rest of the pipeline never indexes parallel maps.
type SpeakerProfile struct {
	Key             Speaker
	Name            string
	AssetDir        string
	LegacyImage     string
	SpeakerUUID     string
	StyleID         int
	OpeningVoice    string
	EndingCallVoice string
	EndingVoice     string
}

// Emotion tags a dialogue line with one of the five sprite poses.
type Emotion string

const (
	EmotionNormal    Emotion = "normal"
	EmotionHappy     Emotion = "happy"
	EmotionAngry     Emotion = "angry"
	EmotionSad       Emotion = "sad"
	EmotionSurprised Emotion = "surprised"
)

// Emotions lists the valid poses in asset-loading order.
func Emotions() []Emotion {
	return []Emotion{EmotionNormal, EmotionHappy, EmotionAngry, EmotionSad, EmotionSurprised}
}

// ValidEmotion reports whether e names a known pose.
func ValidEmotion(e Emotion) bool {
	switch e {
	case EmotionNormal, EmotionHappy, EmotionAngry, EmotionSad, EmotionSurprised:
		return true
	}
	return false
}

// DialogueLine is one scripted utterance. Text may embed reading annotations
// (漢字<よみ>) and display-only bracket markup ([[...]]); those are rewritten
// at the annotation layer before TTS or subtitle rendering. Lines are
// immutable once parsed.
type DialogueLine struct {
	Speaker    Speaker `json:"speaker"`
	Text       string  `json:"text"`
	Emotion    Emotion `json:"emotion"`
	ShortsSkip bool    `json:"shorts_skip,omitempty"`
}

// ScriptMeta holds the script's theme and video title.
type ScriptMeta struct {
	Theme string `json:"theme"`
	Title string `json:"title"`
}

// ScriptData is the full LLM-generated script object.
type ScriptData struct {
	Meta         ScriptMeta     `json:"meta"`
	Dialogue     []DialogueLine `json:"dialogue"`
	NoteContent  string         `json:"note_content"`
	XPostContent string         `json:"x_post_content"`
}

// ParseScript decodes and validates a script JSON document. Unknown speakers
// and malformed emotions are hard errors; a missing emotion defaults to
// normal, matching the generator's output contract.
func ParseScript(data []byte) (*ScriptData, error) {
	var s ScriptData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}
	if len(s.Dialogue) == 0 {
		return nil, fmt.Errorf("script has no dialogue lines")
	}
	for i := range s.Dialogue {
		line := &s.Dialogue[i]
		switch line.Speaker {
		case SpeakerTsuno, SpeakerMegane:
		default:
			return nil, fmt.Errorf("dialogue line %d: unknown speaker %q", i+1, line.Speaker)
		}
		if line.Emotion == "" {
			line.Emotion = EmotionNormal
		}
		if !ValidEmotion(line.Emotion) {
			return nil, fmt.Errorf("dialogue line %d: unknown emotion %q", i+1, line.Emotion)
		}
		if line.Text == "" {
			return nil, fmt.Errorf("dialogue line %d: empty text", i+1)
		}
	}
	return &s, nil
}
