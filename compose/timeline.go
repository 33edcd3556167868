package compose

import (
	"fmt"
	"log"

	"github.com/neuvecom/hebodan/common"
)

// Timeline is an ordered list of clips played back to back with hard cuts.
type Timeline struct {
	Clips []*Clip
}

// TotalDuration is the sum of all clip durations.
func (t *Timeline) TotalDuration() float64 {
	var sum float64
	for _, c := range t.Clips {
		sum += c.Duration
	}
	return sum
}

// BuildTimeline assembles the full episode: the opening bumper when its
// assets exist, one scene per dialogue line, and the ending bumper when its
// call voice exists. lineAudio must be index-aligned with data.Dialogue. In
// portrait mode lines flagged shorts_skip are left out.
func BuildTimeline(d *Deps, data *common.ScriptData, lineAudio []string, workDir string) (*Timeline, error) {
	if len(lineAudio) != len(data.Dialogue) {
		return nil, fmt.Errorf("have %d audio files for %d dialogue lines", len(lineAudio), len(data.Dialogue))
	}

	tl := &Timeline{}

	opening, err := BuildOpening(d, data.Meta.Title, workDir)
	if err != nil {
		return nil, fmt.Errorf("build opening: %w", err)
	}
	if opening != nil {
		tl.Clips = append(tl.Clips, opening)
	}

	for i, line := range data.Dialogue {
		if d.Layout.Portrait && line.ShortsSkip {
			log.Printf("[TIMELINE] Skipping line %d for portrait cut", i)
			continue
		}
		scene, err := BuildScene(d, line, lineAudio[i])
		if err != nil {
			return nil, fmt.Errorf("build scene %d: %w", i, err)
		}
		tl.Clips = append(tl.Clips, scene)
	}
	if len(tl.Clips) == 0 {
		return nil, fmt.Errorf("timeline has no scenes")
	}

	ending, err := BuildEnding(d, workDir)
	if err != nil {
		return nil, fmt.Errorf("build ending: %w", err)
	}
	if ending != nil {
		tl.Clips = append(tl.Clips, ending)
	}

	return tl, nil
}
