package compose

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/neuvecom/hebodan/common"
)

func timelineScript() *common.ScriptData {
	return &common.ScriptData{
		Meta: common.ScriptMeta{Theme: "test", Title: "Test Episode"},
		Dialogue: []common.DialogueLine{
			{Speaker: common.SpeakerTsuno, Text: "One", Emotion: common.EmotionHappy},
			{Speaker: common.SpeakerMegane, Text: "Two", Emotion: common.EmotionNormal, ShortsSkip: true},
			{Speaker: common.SpeakerTsuno, Text: "Three", Emotion: common.EmotionNormal},
		},
	}
}

func timelineAudio(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "line.wav")
		writeSpeechWAV(t, paths[i])
	}
	return paths
}

func TestBuildTimelineLandscape(t *testing.T) {
	// Bare config root: no logo, jingle, or ending voices, so the timeline
	// is scenes only.
	cfg, err := common.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)
	script := timelineScript()

	tl, err := BuildTimeline(d, script, timelineAudio(t, 3), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Clips) != 3 {
		t.Fatalf("got %d clips, want 3", len(tl.Clips))
	}
	if math.Abs(tl.TotalDuration()-3.0) > 1e-9 {
		t.Errorf("total duration %f, want 3.0", tl.TotalDuration())
	}
}

func TestBuildTimelinePortraitSkipsFlaggedLines(t *testing.T) {
	cfg, err := common.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)
	d.Layout.Portrait = true
	script := timelineScript()

	tl, err := BuildTimeline(d, script, timelineAudio(t, 3), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Clips) != 2 {
		t.Fatalf("got %d clips, want 2 with one line skipped", len(tl.Clips))
	}
}

func TestBuildTimelineAudioCountMismatch(t *testing.T) {
	cfg, err := common.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)

	if _, err := BuildTimeline(d, timelineScript(), timelineAudio(t, 2), t.TempDir()); err == nil {
		t.Fatal("expected error for mismatched audio count")
	}
}

func TestBuildTimelineIncludesEnding(t *testing.T) {
	root := t.TempDir()
	cfg, err := common.LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)

	se := cfg.SEDir()
	writeToneWAV(t, filepath.Join(se, "ending_call_tsuno.wav"), 0.5)
	writeToneWAV(t, filepath.Join(se, "ending_tsuno.wav"), 1.0)
	writeToneWAV(t, filepath.Join(se, "ending_megane.wav"), 1.0)

	tl, err := BuildTimeline(d, timelineScript(), timelineAudio(t, 3), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Clips) != 4 {
		t.Fatalf("got %d clips, want 3 scenes + ending", len(tl.Clips))
	}
	last := tl.Clips[len(tl.Clips)-1]
	if last.Duration <= 3 {
		t.Errorf("ending duration %f looks wrong", last.Duration)
	}
}
