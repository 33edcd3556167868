package common

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Reading-annotation handling for script text of the form 漢字<よみがな>.
// TTS gets the reading, subtitles get the base text. Display-only segments
// are wrapped in [[...]]: shown on screen, never spoken.

// Dictionary entries may carry hiragana (e.g. 楽して<らくして>).
var readingEntryPattern = regexp.MustCompile(`([一-龯々ヶa-zA-Zａ-ｚＡ-Ｚ\x{3040}-\x{309F}\x{30A0}-\x{30FF}]+)<([^<>]+)>`)

// Inline conversion excludes hiragana so a reading never swallows the
// particles around the annotated word.
var readingInlinePattern = regexp.MustCompile(`([一-龯々ヶa-zA-Zａ-ｚＡ-Ｚ\x{30A0}-\x{30FF}]+)<([^<>]+)>`)

var annotationPattern = regexp.MustCompile(`<[^<>]+>`)

var displayOnlyPattern = regexp.MustCompile(`\[\[(.+?)\]\]`)

// ConvertReadingAnnotations replaces annotated words with their readings for
// TTS input: "何<なん>とかなる" → "なんとかなる".
func ConvertReadingAnnotations(text string) string {
	return readingInlinePattern.ReplaceAllString(text, "$2")
}

// RemoveReadingAnnotations strips the <...> part for display:
// "大賢者<だいけんじゃ>が現れた" → "大賢者が現れた".
func RemoveReadingAnnotations(text string) string {
	return annotationPattern.ReplaceAllString(text, "")
}

// StripDisplayOnly removes [[...]] segments entirely for TTS.
func StripDisplayOnly(text string) string {
	return displayOnlyPattern.ReplaceAllString(text, "")
}

// UnwrapDisplayOnly keeps the content of [[...]] segments for display.
func UnwrapDisplayOnly(text string) string {
	return displayOnlyPattern.ReplaceAllString(text, "$1")
}

// DisplayText applies the two display rewrites a subtitle needs.
func DisplayText(text string) string {
	return UnwrapDisplayOnly(RemoveReadingAnnotations(text))
}

// SpokenText applies the TTS rewrites plus the optional reading dictionary.
func SpokenText(text string, dict map[string]string) string {
	t := StripDisplayOnly(text)
	t = ConvertReadingAnnotations(t)
	return ApplyReadingDict(t, dict)
}

// LoadReadingDict reads the pronunciation dictionary: one 単語<よみ> entry
// per line, # comments and blank lines skipped. A missing file yields an
// empty dictionary.
func LoadReadingDict(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read reading dict: %w", err)
	}

	dict := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := readingEntryPattern.FindStringSubmatch(line)
		if m == nil {
			log.Printf("reading dict: skipping unparsable line: %s", line)
			continue
		}
		dict[m[1]] = m[2]
	}
	return dict, nil
}

// ApplyReadingDict replaces dictionary words with their readings, longest
// word first so a short entry never clobbers part of a longer one.
func ApplyReadingDict(text string, dict map[string]string) string {
	if len(dict) == 0 {
		return text
	}
	words := make([]string, 0, len(dict))
	for w := range dict {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		return len([]rune(words[i])) > len([]rune(words[j]))
	})
	for _, w := range words {
		text = strings.ReplaceAll(text, w, dict[w])
	}
	return text
}
