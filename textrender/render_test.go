package textrender

import (
	"image/color"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func newTestRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	r, err := NewRasterizerFromData(goregular.TTF)
	if err != nil {
		t.Fatalf("parse bundled font: %v", err)
	}
	return r
}

func TestRenderProducesNonEmptyBitmap(t *testing.T) {
	r := newTestRasterizer(t)
	img, err := r.Render("Hello", Options{
		Size:        32,
		Color:       color.RGBA{255, 255, 255, 255},
		StrokeWidth: 2,
		StrokeColor: color.RGBA{0, 0, 0, 255},
	})
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		t.Fatalf("empty bitmap %v", b)
	}

	opaque := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			opaque++
		}
	}
	if opaque == 0 {
		t.Error("no pixels drawn")
	}
}

func TestRenderHeightIndependentOfGlyphs(t *testing.T) {
	// Same line count must yield the same height whether or not the text
	// has descenders or tall glyphs.
	r := newTestRasterizer(t)
	opts := Options{Size: 32, Color: color.RGBA{255, 255, 255, 255}}

	a, err := r.Render("ace", opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render("gjpqy", opts)
	if err != nil {
		t.Fatal(err)
	}
	if a.Bounds().Dy() != b.Bounds().Dy() {
		t.Errorf("heights differ: %d vs %d", a.Bounds().Dy(), b.Bounds().Dy())
	}
}

func TestRenderWidthGrowsWithText(t *testing.T) {
	r := newTestRasterizer(t)
	opts := Options{Size: 32, Color: color.RGBA{255, 255, 255, 255}}

	short, err := r.Render("hi", opts)
	if err != nil {
		t.Fatal(err)
	}
	long, err := r.Render("hi there, long line", opts)
	if err != nil {
		t.Fatal(err)
	}
	if long.Bounds().Dx() <= short.Bounds().Dx() {
		t.Errorf("longer text not wider: %d <= %d", long.Bounds().Dx(), short.Bounds().Dx())
	}
}

func TestRenderWrapsAtMaxWidth(t *testing.T) {
	r := newTestRasterizer(t)
	opts := Options{Size: 32, Color: color.RGBA{255, 255, 255, 255}, MaxWidth: 120}

	one, err := r.Render("hi", opts)
	if err != nil {
		t.Fatal(err)
	}
	many, err := r.Render("a fairly long sentence that cannot fit one line", opts)
	if err != nil {
		t.Fatal(err)
	}
	if many.Bounds().Dx() > opts.MaxWidth {
		t.Errorf("width %d exceeds MaxWidth %d", many.Bounds().Dx(), opts.MaxWidth)
	}
	if many.Bounds().Dy() <= one.Bounds().Dy() {
		t.Error("wrapped text should be taller than a single line")
	}
}

func TestRenderHonorsHardNewlines(t *testing.T) {
	r := newTestRasterizer(t)
	opts := Options{Size: 32, Color: color.RGBA{255, 255, 255, 255}}

	one, err := r.Render("ab", opts)
	if err != nil {
		t.Fatal(err)
	}
	three, err := r.Render("a\nb\nc", opts)
	if err != nil {
		t.Fatal(err)
	}
	if three.Bounds().Dy() <= one.Bounds().Dy()*2 {
		t.Errorf("3-line render too short: %d vs 1-line %d", three.Bounds().Dy(), one.Bounds().Dy())
	}
}

func TestWrapByRunes(t *testing.T) {
	lines := wrapByRunes("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}
