package generators

import (
	"fmt"
	"image"
	"strings"

	"github.com/neuvecom/hebodan/common"
	"github.com/neuvecom/hebodan/textrender"
)

// ThumbnailSize is YouTube's recommended custom thumbnail resolution.
const (
	ThumbnailWidth  = 1280
	ThumbnailHeight = 720
)

// GenerateThumbnail builds the upload thumbnail: the episode background with
// the logo up top and the title in large outlined text underneath. The
// 【...】 prefix some titles carry is dropped to keep the text short.
func GenerateThumbnail(cfg *common.Config, rast *textrender.Rasterizer, background, logo *image.RGBA, title, outPath string) error {
	canvas := common.Resize(background, ThumbnailWidth, ThumbnailHeight)

	if logo != nil {
		scaled := common.ResizeToHeight(logo, ThumbnailHeight*55/100)
		b := scaled.Bounds()
		common.Overlay(canvas, scaled, (ThumbnailWidth-b.Dx())/2, ThumbnailHeight*3/100)
	}

	text, err := rast.Render(trimTitleTag(title), textrender.Options{
		Size:        cfg.SubtitleFontSize * 2,
		Color:       cfg.SubtitleColor,
		StrokeWidth: 4,
		StrokeColor: cfg.SubtitleStrokeColor,
		MaxWidth:    ThumbnailWidth * 92 / 100,
	})
	if err != nil {
		return fmt.Errorf("render thumbnail title: %w", err)
	}
	b := text.Bounds()
	common.Overlay(canvas, text, (ThumbnailWidth-b.Dx())/2, ThumbnailHeight-b.Dy()-40)

	return common.SaveImage(outPath, canvas)
}

// trimTitleTag removes a leading 【...】 tag from the title.
func trimTitleTag(title string) string {
	if strings.HasPrefix(title, "【") {
		if i := strings.Index(title, "】"); i >= 0 {
			return strings.TrimSpace(title[i+len("】"):])
		}
	}
	return title
}
