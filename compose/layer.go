// Package compose builds and renders the video timeline: per-line dialogue
// scenes with lip-synced character sprites, plus the opening and ending
// bumpers that bookend them.
package compose

import (
	"image"
	"image/color"
	"image/draw"
)

// FrameFunc returns the layer's bitmap at layer-local time t. It must be a
// pure function of t so the renderer may sample frames in any order.
type FrameFunc func(t float64) *image.RGBA

// PosFunc returns the layer's top-left position at layer-local time t.
type PosFunc func(t float64) image.Point

// OpacityFunc returns the layer's opacity in [0, 1] at layer-local time t.
type OpacityFunc func(t float64) float64

// Layer is one time-bounded visual element of a clip. A zero Duration means
// the layer runs to the end of its clip.
type Layer struct {
	Start    float64
	Duration float64
	Frame    FrameFunc
	Pos      PosFunc
	Opacity  OpacityFunc
}

// StaticFrame wraps a fixed bitmap as a FrameFunc.
func StaticFrame(img *image.RGBA) FrameFunc {
	return func(float64) *image.RGBA { return img }
}

// StaticPos wraps a fixed position as a PosFunc.
func StaticPos(x, y int) PosFunc {
	p := image.Pt(x, y)
	return func(float64) image.Point { return p }
}

// FullOpacity is the identity opacity function.
func FullOpacity(float64) float64 { return 1 }

// FadeWindow builds a piecewise-linear opacity schedule: invisible before
// fadeInStart, ramp up over fadeInDur, hold at 1, then ramp down over
// fadeOutDur from fadeOutStart. A negative fadeOutStart disables the
// fade-out entirely.
func FadeWindow(fadeInStart, fadeInDur, fadeOutStart, fadeOutDur float64) OpacityFunc {
	return func(t float64) float64 {
		if t < fadeInStart {
			return 0
		}
		if fadeInDur > 0 && t < fadeInStart+fadeInDur {
			return (t - fadeInStart) / fadeInDur
		}
		if fadeOutStart >= 0 && t >= fadeOutStart {
			if fadeOutDur <= 0 || t >= fadeOutStart+fadeOutDur {
				return 0
			}
			return 1 - (t-fadeOutStart)/fadeOutDur
		}
		return 1
	}
}

// Clip is a composed, time-bounded stack of layers bound to one audio track.
// It exists only while rendering; the concatenated video is the only
// persisted artifact.
type Clip struct {
	Width, Height int
	Background    *image.RGBA
	Layers        []Layer
	Duration      float64
	AudioPath     string
}

// SolidBackground pre-renders a full-frame solid color base.
func SolidBackground(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// FrameAt composites the clip at time t. Layers draw in order over the
// background; each layer's alpha is additionally scaled by its opacity.
// The result depends only on t and the clip's immutable layers.
func (c *Clip) FrameAt(t float64) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	if c.Background != nil {
		draw.Draw(frame, frame.Bounds(), c.Background, image.Point{}, draw.Src)
	}

	for i := range c.Layers {
		l := &c.Layers[i]
		end := l.Start + l.Duration
		if l.Duration <= 0 {
			end = c.Duration
		}
		if t < l.Start || t >= end {
			continue
		}
		local := t - l.Start

		img := l.Frame(local)
		if img == nil {
			continue
		}
		opacity := 1.0
		if l.Opacity != nil {
			opacity = l.Opacity(local)
		}
		if opacity <= 0 {
			continue
		}

		pos := image.Point{}
		if l.Pos != nil {
			pos = l.Pos(local)
		}
		b := img.Bounds()
		rect := image.Rect(pos.X, pos.Y, pos.X+b.Dx(), pos.Y+b.Dy())
		if opacity >= 1 {
			draw.Draw(frame, rect, img, b.Min, draw.Over)
		} else {
			mask := image.NewUniform(color.Alpha{A: uint8(opacity * 255)})
			draw.DrawMask(frame, rect, img, b.Min, mask, image.Point{}, draw.Over)
		}
	}
	return frame
}
