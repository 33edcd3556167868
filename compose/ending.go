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

// CTA text shown under the logo during the ending.
const endingCTA = "チャンネル登録よろしくね！"

// BuildEnding composes the closing bumper. Its length is derived from the
// recorded voice clips: a short lead-in, the call, then one closing line per
// speaker with a gap between, then the fade-out and a silent hold. Returns
// (nil, nil) when the call voice is missing, which disables the ending.
func BuildEnding(d *Deps, workDir string) (*Clip, error) {
	cfg := d.Cfg

	callPath := filepath.Join(cfg.SEDir(), cfg.Speakers[0].EndingCallVoice)
	if _, err := os.Stat(callPath); err != nil {
		log.Println("[ENDING] No call voice, skipping ending")
		return nil, nil
	}
	call, err := audio.LoadClip(callPath)
	if err != nil {
		return nil, fmt.Errorf("load ending call: %w", err)
	}

	// Both characters shout the call together; the window lasts as long as
	// the longer take. Only the first speaker's file is mandatory.
	calls := []*audio.Clip{call}
	callDur := call.Duration()
	if path := filepath.Join(cfg.SEDir(), cfg.Speakers[1].EndingCallVoice); fileExists(path) {
		second, err := audio.LoadClip(path)
		if err != nil {
			return nil, fmt.Errorf("load ending call for %s: %w", cfg.Speakers[1].Key, err)
		}
		calls = append(calls, second)
		callDur = math.Max(callDur, second.Duration())
	} else {
		log.Printf("[ENDING] No call voice for %s, using one", cfg.Speakers[1].Key)
	}

	lineStarts := make([]float64, 2)
	lines := make([]*audio.Clip, 2)
	cursor := cfg.EndingLeadIn + callDur + cfg.EndingGap
	lastStart := cfg.EndingLeadIn
	lastEnd := cfg.EndingLeadIn + callDur
	for i, p := range cfg.Speakers {
		path := filepath.Join(cfg.SEDir(), p.EndingVoice)
		if !fileExists(path) {
			log.Printf("[ENDING] No closing line for %s, skipping it", p.Key)
			continue
		}
		clip, err := audio.LoadClip(path)
		if err != nil {
			return nil, fmt.Errorf("load ending voice for %s: %w", p.Key, err)
		}
		lines[i] = clip
		lineStarts[i] = cursor
		lastStart = cursor
		lastEnd = cursor + clip.Duration()
		cursor += clip.Duration() + cfg.EndingGap
	}

	// Fade once the last line is done, or after the configured delay past
	// its start for very short lines.
	fadeOutStart := math.Max(lastEnd, lastStart+cfg.EndingFadeDelay)
	duration := fadeOutStart + cfg.EndingFadeOutDur + cfg.EndingTrailHold

	clip := &Clip{
		Width:      d.Layout.Width,
		Height:     d.Layout.Height,
		Background: SolidBackground(d.Layout.Width, d.Layout.Height, cfg.BGColor),
		Duration:   duration,
	}

	if full, err := common.LoadImage(cfg.LogoPath()); err == nil {
		logo := common.ResizeToHeight(full, int(float64(d.Layout.Height)*0.22))
		b := logo.Bounds()
		clip.Layers = append(clip.Layers, Layer{
			Frame:   StaticFrame(logo),
			Pos:     StaticPos((d.Layout.Width-b.Dx())/2, int(float64(d.Layout.Height)*0.12)),
			Opacity: FadeWindow(0, cfg.EndingFadeIn, -1, 0),
		})
	}

	for i, p := range cfg.Speakers {
		frames, ok := d.Frames[p.Key]
		if !ok {
			return nil, fmt.Errorf("no frame set loaded for speaker %s", p.Key)
		}
		clip.Layers = append(clip.Layers, endingCharacterLayer(d, frames, i, fadeOutStart))
	}

	cta, err := endingCTALayer(d)
	if err != nil {
		return nil, err
	}
	clip.Layers = append(clip.Layers, cta)

	audioPath, err := mixEndingAudio(d, calls, lines, lineStarts, fadeOutStart, duration, workDir)
	if err != nil {
		return nil, err
	}
	clip.AudioPath = audioPath

	return clip, nil
}

// endingCharacterLayer floats the character in landscape mode; in portrait
// the two drift horizontally and bounce off the frame edges.
func endingCharacterLayer(d *Deps, frames *CharacterFrames, index int, fadeOutStart float64) Layer {
	cfg := d.Cfg
	sprite := frames.Sprite(common.EmotionHappy, false)
	b := sprite.Bounds()
	base := d.Layout.CharBasePos(index, b.Dx(), b.Dy())
	phase := float64(index) * math.Pi / 2

	pos := func(t float64) image.Point {
		dy := FloatOffset(t, cfg.FloatAmplitude, cfg.FloatFrequency, phase)
		return image.Pt(base.X, base.Y+int(math.Round(dy)))
	}
	if d.Layout.Portrait {
		// Opposite directions so the two never track each other.
		velocity := cfg.EndingBounceSpeed
		if index == 1 {
			velocity = -velocity
		}
		maxX := float64(d.Layout.Width - b.Dx())
		pos = func(t float64) image.Point {
			x := Bounce(float64(base.X), velocity, t, 0, maxX)
			return image.Pt(int(math.Round(x)), base.Y)
		}
	}

	return Layer{
		Frame:   StaticFrame(sprite),
		Pos:     pos,
		Opacity: FadeWindow(0, cfg.EndingFadeIn, fadeOutStart, cfg.EndingFadeOutDur),
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func endingCTALayer(d *Deps) (Layer, error) {
	cfg := d.Cfg
	bitmap, err := d.Rasterizer.Render(endingCTA, textrender.Options{
		Size:        cfg.SubtitleFontSize * 3 / 2,
		Color:       cfg.SubtitleColor,
		StrokeWidth: cfg.SubtitleStrokeWidth * 2,
		StrokeColor: cfg.SubtitleStrokeColor,
		MaxWidth:    d.Layout.SubtitleMaxWidth,
	})
	if err != nil {
		return Layer{}, fmt.Errorf("render ending text: %w", err)
	}
	x := (d.Layout.Width - bitmap.Bounds().Dx()) / 2
	y := int(float64(d.Layout.Height) * 0.40)
	if d.Layout.Portrait {
		y = int(float64(d.Layout.Height) * 0.45)
	}
	return Layer{
		Frame:   StaticFrame(bitmap),
		Pos:     StaticPos(x, y),
		Opacity: FadeWindow(0, cfg.EndingFadeIn, -1, 0),
	}, nil
}

func mixEndingAudio(d *Deps, calls, lines []*audio.Clip, lineStarts []float64, fadeOutStart, duration float64, workDir string) (string, error) {
	cfg := d.Cfg
	mixer := audio.NewMixer(calls[0].SampleRate)
	for i, clip := range calls {
		if err := mixer.Add(clip, cfg.EndingLeadIn); err != nil {
			return "", fmt.Errorf("mix ending call %d: %w", i, err)
		}
	}
	for i, clip := range lines {
		if clip == nil {
			continue
		}
		if err := mixer.Add(clip, lineStarts[i]); err != nil {
			return "", fmt.Errorf("mix ending voice %d: %w", i, err)
		}
	}
	mixer.ExtendTo(duration)
	mixer.FadeOut(fadeOutStart, cfg.EndingFadeOutDur)

	out := filepath.Join(workDir, "ending_audio.wav")
	if err := audio.WriteWAV(out, mixer.Mix()); err != nil {
		return "", fmt.Errorf("write ending audio: %w", err)
	}
	return out, nil
}
