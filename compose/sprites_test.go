package compose

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/neuvecom/hebodan/common"
)

func writeSprite(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	if err := common.SaveImage(path, solidSprite(16, 20, c)); err != nil {
		t.Fatal(err)
	}
}

func testProfile() common.SpeakerProfile {
	return common.SpeakerProfile{Key: common.SpeakerTsuno, AssetDir: "tsuno", LegacyImage: "tsuno.png"}
}

func TestLoadCharacterFramesStructured(t *testing.T) {
	imagesDir := t.TempDir()
	spriteDir := filepath.Join(imagesDir, "tsuno")
	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	writeSprite(t, filepath.Join(spriteDir, "normal_closed.png"), red)
	writeSprite(t, filepath.Join(spriteDir, "normal_open.png"), green)
	writeSprite(t, filepath.Join(spriteDir, "happy_closed.png"), blue)

	frames, err := LoadCharacterFrames(testProfile(), imagesDir, 20)
	if err != nil {
		t.Fatal(err)
	}

	if got := frames.Sprite(common.EmotionHappy, false).RGBAAt(2, 2); got != blue {
		t.Errorf("happy closed = %v, want %v", got, blue)
	}
	// Unknown pose falls back to normal.
	if got := frames.Sprite(common.EmotionAngry, false).RGBAAt(2, 2); got != red {
		t.Errorf("angry closed fallback = %v, want normal %v", got, red)
	}
	// Missing open pose falls back through normal's open sprite.
	if got := frames.Sprite(common.EmotionHappy, true).RGBAAt(2, 2); got != green {
		t.Errorf("happy open fallback = %v, want %v", got, green)
	}
}

func TestLoadCharacterFramesLegacy(t *testing.T) {
	imagesDir := t.TempDir()
	gray := color.RGBA{128, 128, 128, 255}
	writeSprite(t, filepath.Join(imagesDir, "tsuno.png"), gray)

	frames, err := LoadCharacterFrames(testProfile(), imagesDir, 20)
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range common.Emotions() {
		closed := frames.Sprite(e, false)
		open := frames.Sprite(e, true)
		if closed == nil || open == nil {
			t.Fatalf("emotion %s missing in legacy mode", e)
		}
		if closed != open {
			t.Errorf("emotion %s: legacy open and closed should be the same image", e)
		}
	}
}

func TestLoadCharacterFramesMissingEverything(t *testing.T) {
	if _, err := LoadCharacterFrames(testProfile(), t.TempDir(), 20); err == nil {
		t.Fatal("expected error with no sprites at all")
	}
}

func TestLoadCharacterFramesResizes(t *testing.T) {
	imagesDir := t.TempDir()
	writeSprite(t, filepath.Join(imagesDir, "tsuno.png"), color.RGBA{1, 2, 3, 255})

	frames, err := LoadCharacterFrames(testProfile(), imagesDir, 40)
	if err != nil {
		t.Fatal(err)
	}
	if got := frames.Sprite(common.EmotionNormal, false).Bounds().Dy(); got != 40 {
		t.Errorf("sprite height %d, want 40", got)
	}
}

func TestResolveEmotion(t *testing.T) {
	m := map[common.Emotion]*image.RGBA{
		common.EmotionNormal: solidSprite(2, 2, color.RGBA{}),
		common.EmotionSad:    solidSprite(2, 2, color.RGBA{}),
	}
	if got := ResolveEmotion(m, common.EmotionSad); got != common.EmotionSad {
		t.Errorf("got %q, want sad", got)
	}
	if got := ResolveEmotion(m, common.EmotionSurprised); got != common.EmotionNormal {
		t.Errorf("got %q, want normal fallback", got)
	}
}
