// Package textrender rasterizes subtitle and title text into tightly-cropped
// RGBA bitmaps with a stroke outline, ready to composite as a video layer.
package textrender

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const defaultCharsPerLine = 20

// Rasterizer renders text with one loaded font. Safe for concurrent use:
// each Render call creates its own face.
type Rasterizer struct {
	fnt *opentype.Font
}

// NewRasterizer loads a TrueType/OpenType font from disk. An unresolvable
// font is a configuration error the caller must treat as fatal.
func NewRasterizer(fontPath string) (*Rasterizer, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", fontPath, err)
	}
	return NewRasterizerFromData(data)
}

// NewRasterizerFromData parses font bytes already in memory.
func NewRasterizerFromData(ttf []byte) (*Rasterizer, error) {
	fnt, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Rasterizer{fnt: fnt}, nil
}

// Options configures one Render call.
type Options struct {
	Size         int
	Color        color.RGBA
	StrokeWidth  int
	StrokeColor  color.RGBA
	MaxWidth     int // pixel wrap width; 0 wraps at CharsPerLine
	CharsPerLine int // rune wrap count when MaxWidth is 0; default 20
}

// Render draws text onto a transparent bitmap sized to its own content.
// Explicit newlines are hard breaks; within each segment the text wraps
// greedily per rune against the measured pixel width when MaxWidth > 0.
// Lines are centered, stacked with spacing of 30% of the font size, and the
// stroke outline is drawn under the fill.
func (r *Rasterizer) Render(text string, o Options) (*image.RGBA, error) {
	if o.Size <= 0 {
		o.Size = 48
	}
	if o.CharsPerLine <= 0 {
		o.CharsPerLine = defaultCharsPerLine
	}

	face, err := opentype.NewFace(r.fnt, &opentype.FaceOptions{
		Size:    float64(o.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	measure := func(s string) int {
		return font.MeasureString(face, s).Ceil()
	}

	var lines []string
	if o.MaxWidth > 0 {
		lines = wrapByWidth(text, measure, o.MaxWidth-o.StrokeWidth*2)
	} else {
		lines = wrapByRunes(text, o.CharsPerLine)
	}
	if len(lines) == 0 {
		lines = []string{text}
	}

	// Metric-based line height keeps the bitmap height a function of line
	// count alone, independent of which glyphs appear.
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	spacing := int(float64(o.Size) * 0.3)

	lineWidths := make([]int, len(lines))
	maxWidth := 0
	for i, line := range lines {
		lineWidths[i] = measure(line)
		if lineWidths[i] > maxWidth {
			maxWidth = lineWidths[i]
		}
	}

	pad := o.StrokeWidth * 2
	imgW := maxWidth + pad*2
	imgH := lineHeight*len(lines) + spacing*(len(lines)-1) + pad*2
	if imgW < 1 {
		imgW = 1
	}
	if imgH < 1 {
		imgH = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))

	for i, line := range lines {
		x := (imgW - lineWidths[i]) / 2
		y := pad + ascent + i*(lineHeight+spacing)
		drawLine(img, face, line, x, y, o)
	}
	return img, nil
}

func drawLine(dst *image.RGBA, face font.Face, line string, x, y int, o Options) {
	sw := o.StrokeWidth
	if sw > 0 {
		stroke := image.NewUniform(o.StrokeColor)
		for dy := -sw; dy <= sw; dy++ {
			for dx := -sw; dx <= sw; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if dx*dx+dy*dy > sw*sw {
					continue
				}
				d := font.Drawer{Dst: dst, Src: stroke, Face: face, Dot: fixed.P(x+dx, y+dy)}
				d.DrawString(line)
			}
		}
	}
	d := font.Drawer{Dst: dst, Src: image.NewUniform(o.Color), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(line)
}

// wrapByWidth splits on explicit newlines first, then greedily packs runes
// up to maxWidth measured pixels per line.
func wrapByWidth(text string, measure func(string) int, maxWidth int) []string {
	var lines []string
	for _, segment := range strings.Split(text, "\n") {
		current := ""
		for _, ch := range segment {
			candidate := current + string(ch)
			if measure(candidate) > maxWidth && current != "" {
				lines = append(lines, current)
				current = string(ch)
			} else {
				current = candidate
			}
		}
		lines = append(lines, current)
	}
	return lines
}

// wrapByRunes breaks each newline-separated segment into fixed-size rune
// chunks.
func wrapByRunes(text string, charsPerLine int) []string {
	var lines []string
	for _, segment := range strings.Split(text, "\n") {
		runes := []rune(segment)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		for start := 0; start < len(runes); start += charsPerLine {
			end := start + charsPerLine
			if end > len(runes) {
				end = len(runes)
			}
			lines = append(lines, string(runes[start:end]))
		}
	}
	return lines
}
