package compose

import (
	"image"

	"github.com/neuvecom/hebodan/common"
)

// Layout fixes the talk-show geometry for one aspect ratio. Landscape puts
// the two characters left/right of a lower subtitle band; portrait stacks
// them above/below a mid-screen band.
type Layout struct {
	Width, Height    int
	Portrait         bool
	CharHeight       int
	SubtitleMaxWidth int
	SubtitleY        int
	LogoHeight       int
	LogoY            int
}

// LandscapeLayout is the 16:9 YouTube geometry.
func LandscapeLayout(cfg *common.Config) Layout {
	w, h := cfg.LandscapeWidth, cfg.LandscapeHeight
	return Layout{
		Width:            w,
		Height:           h,
		CharHeight:       int(float64(h) * 0.7),
		SubtitleMaxWidth: int(float64(w) * 0.8),
		SubtitleY:        h - 120,
		LogoHeight:       int(float64(h) * 0.12),
		LogoY:            int(float64(h) * 0.04),
	}
}

// PortraitLayout is the 9:16 Shorts geometry.
func PortraitLayout(cfg *common.Config) Layout {
	w, h := cfg.PortraitWidth, cfg.PortraitHeight
	return Layout{
		Width:            w,
		Height:           h,
		Portrait:         true,
		CharHeight:       int(float64(h) * 0.3),
		SubtitleMaxWidth: int(float64(w) * 0.9),
		SubtitleY:        int(float64(h) * 0.42),
		LogoHeight:       int(float64(h) * 0.08),
		LogoY:            int(float64(h) * 0.02),
	}
}

// CharBasePos returns the resting top-left position for speaker index 0 or
// 1 given the sprite's dimensions. Idle motion offsets are applied on top.
func (l Layout) CharBasePos(index, spriteW, spriteH int) image.Point {
	if l.Portrait {
		x := (l.Width - spriteW) / 2
		if index == 0 {
			return image.Pt(x, int(float64(l.Height)*0.05))
		}
		return image.Pt(x, int(float64(l.Height)*0.55))
	}
	y := (l.Height - spriteH) / 2
	if index == 0 {
		return image.Pt(0, y)
	}
	return image.Pt(l.Width-spriteW, y)
}

// LogoBasePos centers a logo of the given width at the layout's logo band.
func (l Layout) LogoBasePos(logoW int) image.Point {
	return image.Pt((l.Width-logoW)/2, l.LogoY)
}
