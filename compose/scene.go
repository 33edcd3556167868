package compose

import (
	"fmt"
	"image"
	"math"

	"github.com/neuvecom/hebodan/audio"
	"github.com/neuvecom/hebodan/common"
	"github.com/neuvecom/hebodan/textrender"
)

// Deps bundles the shared, immutable inputs every clip builder needs: the
// configuration, one layout, the pre-loaded character frame sets, the text
// rasterizer and the optional background/logo bitmaps.
type Deps struct {
	Cfg        *common.Config
	Layout     Layout
	Frames     map[common.Speaker]*CharacterFrames
	Rasterizer *textrender.Rasterizer
	Background *image.RGBA // full-frame; nil falls back to the solid color
	Logo       *image.RGBA // pre-resized; nil omits the logo layer
}

func (d *Deps) backgroundFrame() *image.RGBA {
	if d.Background != nil {
		return d.Background
	}
	return SolidBackground(d.Layout.Width, d.Layout.Height, d.Cfg.BGColor)
}

// BuildScene composes one dialogue line into a clip whose duration equals
// its audio clip's duration exactly. The active speaker gets full
// brightness, a 1.1x scale and a mouth animated from the audio's per-frame
// loudness; the inactive speaker is dimmed, unscaled and static.
func BuildScene(d *Deps, line common.DialogueLine, audioPath string) (*Clip, error) {
	clip, err := audio.LoadClip(audioPath)
	if err != nil {
		return nil, err
	}
	duration := clip.Duration()
	mouth := audio.AnalyzeMouthStates(clip, d.Cfg.FPS, d.Cfg.MouthThreshold, d.Cfg.MinOpenFrames)

	scene := &Clip{
		Width:      d.Layout.Width,
		Height:     d.Layout.Height,
		Background: d.backgroundFrame(),
		Duration:   duration,
		AudioPath:  audioPath,
	}

	if d.Logo != nil {
		scene.Layers = append(scene.Layers, logoLayer(d))
	}

	for i, profile := range d.Cfg.Speakers {
		frames, ok := d.Frames[profile.Key]
		if !ok {
			return nil, fmt.Errorf("no frame set loaded for speaker %s", profile.Key)
		}
		layer, err := characterLayer(d, frames, i, profile.Key == line.Speaker, line.Emotion, mouth)
		if err != nil {
			return nil, err
		}
		scene.Layers = append(scene.Layers, layer)
	}

	subtitle, err := subtitleLayer(d, line.Text)
	if err != nil {
		return nil, err
	}
	scene.Layers = append(scene.Layers, subtitle)

	return scene, nil
}

// characterLayer prepares one speaker's layer. Sprites are pre-scaled and
// pre-dimmed once so the frame function only selects between two bitmaps.
func characterLayer(d *Deps, frames *CharacterFrames, index int, active bool, emotion common.Emotion, mouth []bool) (Layer, error) {
	var closed, open *image.RGBA
	if active {
		closed = common.ScaleBy(frames.Sprite(emotion, false), 1.1)
		open = common.ScaleBy(frames.Sprite(emotion, true), 1.1)
	} else {
		// The inactive character sits in its neutral pose at half
		// brightness; only one character talks at a time.
		closed = common.ApplyBrightness(frames.Sprite(common.EmotionNormal, false), 0.5)
		open = closed
	}
	if closed == nil || open == nil {
		return Layer{}, fmt.Errorf("speaker %d has no sprite for emotion %s", index, emotion)
	}

	b := closed.Bounds()
	base := d.Layout.CharBasePos(index, b.Dx(), b.Dy())
	phase := float64(index) * math.Pi / 2
	cfg := d.Cfg

	frame := StaticFrame(closed)
	if active && len(mouth) > 0 {
		fps := cfg.FPS
		frame = func(t float64) *image.RGBA {
			idx := int(t * float64(fps))
			if idx >= len(mouth) {
				idx = len(mouth) - 1
			}
			if idx < 0 {
				idx = 0
			}
			if mouth[idx] {
				return open
			}
			return closed
		}
	}

	return Layer{
		Frame: frame,
		Pos: func(t float64) image.Point {
			dy := FloatOffset(t, cfg.FloatAmplitude, cfg.FloatFrequency, phase)
			return image.Pt(base.X, base.Y+int(math.Round(dy)))
		},
		Opacity: FullOpacity,
	}, nil
}

// logoLayer places the dialogue logo between background and characters with
// a small trembling jitter. It never fades and never moves from its band.
func logoLayer(d *Deps) Layer {
	logo := d.Logo
	base := d.Layout.LogoBasePos(logo.Bounds().Dx())
	amp := d.Cfg.LogoJitterAmp
	return Layer{
		Frame: StaticFrame(logo),
		Pos: func(t float64) image.Point {
			dx, dy := Jitter(t, amp)
			return image.Pt(base.X+int(math.Round(dx)), base.Y+int(math.Round(dy)))
		},
		Opacity: FullOpacity,
	}
}

// subtitleLayer rasterizes the line's display text (annotations removed,
// display-only markup unwrapped) centered in the lower text band.
func subtitleLayer(d *Deps, text string) (Layer, error) {
	display := common.DisplayText(text)
	bitmap, err := d.Rasterizer.Render(display, textrender.Options{
		Size:        d.Cfg.SubtitleFontSize,
		Color:       d.Cfg.SubtitleColor,
		StrokeWidth: d.Cfg.SubtitleStrokeWidth,
		StrokeColor: d.Cfg.SubtitleStrokeColor,
		MaxWidth:    d.Layout.SubtitleMaxWidth,
	})
	if err != nil {
		return Layer{}, fmt.Errorf("render subtitle: %w", err)
	}
	x := (d.Layout.Width - bitmap.Bounds().Dx()) / 2
	return Layer{
		Frame:   StaticFrame(bitmap),
		Pos:     StaticPos(x, d.Layout.SubtitleY),
		Opacity: FullOpacity,
	}, nil
}
