package compose

import (
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/neuvecom/hebodan/audio"
	"github.com/neuvecom/hebodan/common"
	"github.com/neuvecom/hebodan/textrender"
)

// BuildOpening composes the fixed-length opening bumper: the channel logo
// fades in and zooms from half up to full size, the episode title fades in
// below it, the jingle plays under two greeting voice-overs, and everything
// fades out together. Returns (nil, nil) when both the logo image and the
// jingle are missing, which means the channel has no opening assets at all.
func BuildOpening(d *Deps, title, workDir string) (*Clip, error) {
	cfg := d.Cfg

	logo, logoErr := common.LoadImage(cfg.LogoPath())
	jinglePath := filepath.Join(cfg.SEDir(), "opening.wav")
	_, jingleErr := os.Stat(jinglePath)
	if logoErr != nil && jingleErr != nil {
		log.Println("[OPENING] No logo and no jingle, skipping opening")
		return nil, nil
	}

	clip := &Clip{
		Width:      d.Layout.Width,
		Height:     d.Layout.Height,
		Background: SolidBackground(d.Layout.Width, d.Layout.Height, cfg.BGColor),
		Duration:   cfg.OpeningDuration,
	}
	fadeOutDur := cfg.OpeningDuration - cfg.OpeningFadeOutStart

	if logoErr == nil {
		resized := common.ResizeToHeight(logo, int(float64(d.Layout.Height)*0.35))
		clip.Layers = append(clip.Layers, openingLogoLayer(d, resized, fadeOutDur))
	}

	titleLayer, err := openingTitleLayer(d, title, fadeOutDur)
	if err != nil {
		return nil, err
	}
	clip.Layers = append(clip.Layers, titleLayer)

	audioPath, err := mixOpeningAudio(d, jinglePath, workDir)
	if err != nil {
		return nil, err
	}
	clip.AudioPath = audioPath

	return clip, nil
}

// openingLogoLayer zooms the logo between the configured start and end
// marks. The zoom is quantized to output frames so the same t always yields
// the same bitmap; scaled variants are rendered once up front.
func openingLogoLayer(d *Deps, logo *image.RGBA, fadeOutDur float64) Layer {
	cfg := d.Cfg
	const zoomFrom, zoomTo = 0.5, 1.0
	fps := float64(cfg.FPS)

	scaleAt := func(t float64) float64 {
		switch {
		case t <= cfg.OpeningZoomStart:
			return zoomFrom
		case t >= cfg.OpeningZoomEnd:
			return zoomTo
		default:
			p := (t - cfg.OpeningZoomStart) / (cfg.OpeningZoomEnd - cfg.OpeningZoomStart)
			return zoomFrom + (zoomTo-zoomFrom)*p
		}
	}

	total := int(math.Ceil(cfg.OpeningDuration * fps))
	startImg := common.ScaleBy(logo, zoomFrom)
	frames := make([]*image.RGBA, total)
	for n := range frames {
		s := scaleAt(float64(n) / fps)
		switch s {
		case zoomFrom:
			frames[n] = startImg
		case zoomTo:
			frames[n] = logo
		default:
			frames[n] = common.ScaleBy(logo, s)
		}
	}

	w, h := d.Layout.Width, d.Layout.Height
	return Layer{
		Frame: func(t float64) *image.RGBA {
			n := int(t * fps)
			if n >= len(frames) {
				n = len(frames) - 1
			}
			if n < 0 {
				n = 0
			}
			return frames[n]
		},
		Pos: func(t float64) image.Point {
			n := int(t * fps)
			if n >= len(frames) {
				n = len(frames) - 1
			}
			if n < 0 {
				n = 0
			}
			b := frames[n].Bounds()
			return image.Pt((w-b.Dx())/2, int(float64(h)*0.32)-b.Dy()/2)
		},
		Opacity: FadeWindow(0, cfg.OpeningLogoFadeIn, cfg.OpeningFadeOutStart, fadeOutDur),
	}
}

func openingTitleLayer(d *Deps, title string, fadeOutDur float64) (Layer, error) {
	cfg := d.Cfg
	bitmap, err := d.Rasterizer.Render(title, textrender.Options{
		Size:        cfg.SubtitleFontSize * 3 / 2,
		Color:       cfg.SubtitleColor,
		StrokeWidth: cfg.SubtitleStrokeWidth * 2,
		StrokeColor: cfg.SubtitleStrokeColor,
		MaxWidth:    int(float64(d.Layout.Width) * 0.85),
	})
	if err != nil {
		return Layer{}, fmt.Errorf("render opening title: %w", err)
	}
	x := (d.Layout.Width - bitmap.Bounds().Dx()) / 2
	y := int(float64(d.Layout.Height) * 0.62)
	return Layer{
		Frame:   StaticFrame(bitmap),
		Pos:     StaticPos(x, y),
		Opacity: FadeWindow(cfg.OpeningTitleFadeIn, cfg.OpeningTitleFadeDur, cfg.OpeningFadeOutStart, fadeOutDur),
	}, nil
}

// mixOpeningAudio lays the jingle under the two greeting voice-overs and
// fades the mix with the video. Missing individual files are tolerated; the
// mix of whatever exists is written to workDir.
func mixOpeningAudio(d *Deps, jinglePath, workDir string) (string, error) {
	cfg := d.Cfg

	type cue struct {
		path   string
		offset float64
	}
	cues := []cue{
		{jinglePath, 0},
		{filepath.Join(cfg.SEDir(), cfg.Speakers[0].OpeningVoice), cfg.OpeningVoiceAStart},
		{filepath.Join(cfg.SEDir(), cfg.Speakers[1].OpeningVoice), cfg.OpeningVoiceBStart},
	}

	var mixer *audio.Mixer
	for _, c := range cues {
		clip, err := audio.LoadClip(c.path)
		if err != nil {
			log.Printf("[OPENING] No voice-over %s, skipping", filepath.Base(c.path))
			continue
		}
		if mixer == nil {
			mixer = audio.NewMixer(clip.SampleRate)
		}
		if err := mixer.Add(clip, c.offset); err != nil {
			return "", fmt.Errorf("mix %s: %w", filepath.Base(c.path), err)
		}
	}
	if mixer == nil {
		return "", nil
	}

	mixer.ExtendTo(cfg.OpeningDuration)
	mixer.FadeOut(cfg.OpeningFadeOutStart, cfg.OpeningDuration-cfg.OpeningFadeOutStart)

	out := filepath.Join(workDir, "opening_audio.wav")
	if err := audio.WriteWAV(out, mixer.Mix()); err != nil {
		return "", fmt.Errorf("write opening audio: %w", err)
	}
	return out, nil
}
