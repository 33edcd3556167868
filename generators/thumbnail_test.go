package generators

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/neuvecom/hebodan/common"
	"github.com/neuvecom/hebodan/textrender"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestGenerateThumbnail(t *testing.T) {
	cfg, err := common.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rast, err := textrender.NewRasterizerFromData(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	bg := solidRGBA(160, 90, color.RGBA{0, 0, 200, 255})
	logo := solidRGBA(40, 24, color.RGBA{200, 0, 0, 255})

	outPath := filepath.Join(t.TempDir(), "thumbnail.png")
	if err := GenerateThumbnail(cfg, rast, bg, logo, "Test Episode", outPath); err != nil {
		t.Fatal(err)
	}

	out, err := common.LoadImage(outPath)
	if err != nil {
		t.Fatal(err)
	}
	b := out.Bounds()
	if b.Dx() != ThumbnailWidth || b.Dy() != ThumbnailHeight {
		t.Fatalf("thumbnail is %dx%d, want %dx%d", b.Dx(), b.Dy(), ThumbnailWidth, ThumbnailHeight)
	}

	// Logo sits centered near the top; the sample point must be red, not
	// background blue.
	got := out.RGBAAt(ThumbnailWidth/2, ThumbnailHeight/4)
	if got.R < 150 || got.B > 100 {
		t.Errorf("pixel under logo = %v, want red", got)
	}
}

func TestTrimTitleTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"【衝撃】すごい話", "すごい話"},
		{"タグなしの題名", "タグなしの題名"},
		{"【閉じない括弧の題名", "【閉じない括弧の題名"},
	}
	for _, tt := range tests {
		if got := trimTitleTag(tt.in); got != tt.want {
			t.Errorf("trimTitleTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
