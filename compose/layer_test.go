package compose

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solidSprite(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFadeWindow(t *testing.T) {
	f := FadeWindow(1, 0.5, 3, 1)
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{0.99, 0},
		{1.25, 0.5},
		{1.5, 1},
		{2, 1},
		{3, 1},
		{3.5, 0.5},
		{4, 0},
		{10, 0},
	}
	for _, tt := range tests {
		if got := f(tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("opacity(%.2f) = %f, want %f", tt.t, got, tt.want)
		}
	}
}

func TestFadeWindowNoFadeOut(t *testing.T) {
	f := FadeWindow(0, 0.5, -1, 0)
	if got := f(100); got != 1 {
		t.Errorf("opacity(100) = %f, want 1 with fade-out disabled", got)
	}
}

func TestFrameAtCompositesLayerOverBackground(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	clip := &Clip{
		Width:      10,
		Height:     10,
		Background: SolidBackground(10, 10, blue),
		Duration:   1,
		Layers: []Layer{{
			Frame:   StaticFrame(solidSprite(4, 4, red)),
			Pos:     StaticPos(2, 2),
			Opacity: FullOpacity,
		}},
	}

	frame := clip.FrameAt(0.5)
	if got := frame.RGBAAt(0, 0); got != blue {
		t.Errorf("corner = %v, want background %v", got, blue)
	}
	if got := frame.RGBAAt(3, 3); got != red {
		t.Errorf("inside sprite = %v, want %v", got, red)
	}
}

func TestFrameAtHonorsLayerWindow(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	clip := &Clip{
		Width:      4,
		Height:     4,
		Background: SolidBackground(4, 4, blue),
		Duration:   3,
		Layers: []Layer{{
			Start:    1,
			Duration: 1,
			Frame:    StaticFrame(solidSprite(4, 4, red)),
			Pos:      StaticPos(0, 0),
			Opacity:  FullOpacity,
		}},
	}

	if got := clip.FrameAt(0.5).RGBAAt(1, 1); got != blue {
		t.Errorf("before window: %v, want background", got)
	}
	if got := clip.FrameAt(1.5).RGBAAt(1, 1); got != red {
		t.Errorf("inside window: %v, want sprite", got)
	}
	if got := clip.FrameAt(2.5).RGBAAt(1, 1); got != blue {
		t.Errorf("after window: %v, want background", got)
	}
}

func TestFrameAtAppliesOpacity(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	clip := &Clip{
		Width:      4,
		Height:     4,
		Background: SolidBackground(4, 4, black),
		Duration:   1,
		Layers: []Layer{{
			Frame:   StaticFrame(solidSprite(4, 4, white)),
			Pos:     StaticPos(0, 0),
			Opacity: func(float64) float64 { return 0.5 },
		}},
	}

	got := clip.FrameAt(0).RGBAAt(1, 1)
	if got.R < 100 || got.R > 155 {
		t.Errorf("half-opacity white over black gave R=%d, want ~127", got.R)
	}
}

func TestFrameAtIsOrderIndependent(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	clip := &Clip{
		Width:      4,
		Height:     4,
		Background: SolidBackground(4, 4, color.RGBA{0, 0, 0, 255}),
		Duration:   2,
		Layers: []Layer{{
			Frame:   StaticFrame(solidSprite(2, 2, red)),
			Pos:     func(t float64) image.Point { return image.Pt(int(t), 0) },
			Opacity: FullOpacity,
		}},
	}

	// Sampling t=1 after t=0 must equal sampling t=1 first.
	a := clip.FrameAt(1)
	clip.FrameAt(0)
	b := clip.FrameAt(1)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("frame at t=1 changed after sampling t=0")
		}
	}
}
