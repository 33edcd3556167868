package compose

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/neuvecom/hebodan/audio"
	"github.com/neuvecom/hebodan/common"
)

func TestBuildOpeningSkippedWithoutAssets(t *testing.T) {
	cfg, err := common.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)

	clip, err := BuildOpening(d, "Title", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if clip != nil {
		t.Fatal("expected opening to be skipped with no logo and no jingle")
	}
}

func TestBuildOpeningWithJingleOnly(t *testing.T) {
	root := t.TempDir()
	cfg, err := common.LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)
	writeToneWAV(t, filepath.Join(cfg.SEDir(), "opening.wav"), 2.0)

	workDir := t.TempDir()
	clip, err := BuildOpening(d, "Test Episode", workDir)
	if err != nil {
		t.Fatal(err)
	}
	if clip == nil {
		t.Fatal("opening skipped despite jingle present")
	}
	if math.Abs(clip.Duration-cfg.OpeningDuration) > 1e-9 {
		t.Errorf("duration %f, want %f", clip.Duration, cfg.OpeningDuration)
	}
	if clip.AudioPath == "" {
		t.Fatal("no mixed audio written")
	}

	mixed, err := audio.LoadClip(clip.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mixed.Duration()-cfg.OpeningDuration) > 0.01 {
		t.Errorf("mixed audio duration %f, want %f", mixed.Duration(), cfg.OpeningDuration)
	}
}

func TestBuildOpeningTitleFadesIn(t *testing.T) {
	root := t.TempDir()
	cfg, err := common.LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)
	writeToneWAV(t, filepath.Join(cfg.SEDir(), "opening.wav"), 2.0)

	clip, err := BuildOpening(d, "Test Episode", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	countOpaque := func(tt float64) int {
		frame := clip.FrameAt(tt)
		bg := cfg.BGColor
		n := 0
		for y := 0; y < clip.Height; y++ {
			for x := 0; x < clip.Width; x++ {
				if frame.RGBAAt(x, y) != bg {
					n++
				}
			}
		}
		return n
	}

	// Before the title fade-in the frame is pure background; after it the
	// title pixels appear; during the final fade-out they vanish again.
	if n := countOpaque(1.0); n != 0 {
		t.Errorf("t=1.0: %d non-background pixels before title fade-in", n)
	}
	if n := countOpaque(4.0); n == 0 {
		t.Error("t=4.0: title not visible after fade-in")
	}
	if n := countOpaque(6.999); n != 0 {
		t.Errorf("t=6.999: %d non-background pixels at end of fade-out", n)
	}
}

func TestBuildOpeningWithLogoOnly(t *testing.T) {
	root := t.TempDir()
	cfg, err := common.LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)
	if err := os.MkdirAll(cfg.ImagesDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := common.SaveImage(cfg.LogoPath(), solidSprite(40, 24, closedRed)); err != nil {
		t.Fatal(err)
	}

	clip, err := BuildOpening(d, "Test Episode", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if clip == nil {
		t.Fatal("opening skipped despite logo present")
	}
	// No audio assets at all leaves the bumper silent.
	if clip.AudioPath != "" {
		t.Errorf("unexpected audio path %q", clip.AudioPath)
	}
}

func TestBuildOpeningLogoZoomsHalfToFull(t *testing.T) {
	root := t.TempDir()
	cfg, err := common.LoadConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	d := testDeps(t, cfg)
	if err := os.MkdirAll(cfg.ImagesDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := common.SaveImage(cfg.LogoPath(), solidSprite(40, 24, closedRed)); err != nil {
		t.Fatal(err)
	}

	clip, err := BuildOpening(d, "Test Episode", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	logoLayer := clip.Layers[0]
	full := logoLayer.Frame(cfg.OpeningZoomEnd + 0.5).Bounds()
	start := logoLayer.Frame(0).Bounds()
	if diff := start.Dy()*2 - full.Dy(); diff < -1 || diff > 1 {
		t.Errorf("start height %d, want half of full height %d", start.Dy(), full.Dy())
	}
	mid := logoLayer.Frame((cfg.OpeningZoomStart + cfg.OpeningZoomEnd) / 2).Bounds()
	if mid.Dy() <= start.Dy() || mid.Dy() >= full.Dy() {
		t.Errorf("mid-zoom height %d not between %d and %d", mid.Dy(), start.Dy(), full.Dy())
	}
}
