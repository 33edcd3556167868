package compose

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/neuvecom/hebodan/common"
)

// CharacterFrames holds one speaker's sprites, resized to a target height:
// per emotion, one mouth-closed and one mouth-open pose. Loaded once per
// render job and shared read-only across every scene.
type CharacterFrames struct {
	MouthClosed map[common.Emotion]*image.RGBA
	MouthOpen   map[common.Emotion]*image.RGBA
}

// LoadCharacterFrames loads a speaker's sprite set from the structured
// directory {imagesDir}/{assetDir}/{emotion}_{closed|open}.png. If the
// directory is absent, or the normal closed-mouth sprite is still missing
// after loading, the legacy single image fills every empty slot so the
// renderer always has at least a normal pose. In legacy mode both mouth
// states render identically and no lip animation is visible.
func LoadCharacterFrames(profile common.SpeakerProfile, imagesDir string, targetHeight int) (*CharacterFrames, error) {
	frames := &CharacterFrames{
		MouthClosed: make(map[common.Emotion]*image.RGBA),
		MouthOpen:   make(map[common.Emotion]*image.RGBA),
	}

	assetsDir := filepath.Join(imagesDir, profile.AssetDir)
	if info, err := os.Stat(assetsDir); err == nil && info.IsDir() {
		loaded := 0
		for _, emotion := range common.Emotions() {
			closedPath := filepath.Join(assetsDir, fmt.Sprintf("%s_closed.png", emotion))
			openPath := filepath.Join(assetsDir, fmt.Sprintf("%s_open.png", emotion))

			if img, err := common.LoadImage(closedPath); err == nil {
				frames.MouthClosed[emotion] = common.ResizeToHeight(img, targetHeight)
				loaded++
			}
			if img, err := common.LoadImage(openPath); err == nil {
				frames.MouthOpen[emotion] = common.ResizeToHeight(img, targetHeight)
				loaded++
			}
		}
		log.Printf("character assets: %s (%d sprites)", profile.Key, loaded)

		if _, ok := frames.MouthClosed[common.EmotionNormal]; !ok {
			log.Printf("character assets: %s missing normal_closed.png, using legacy image", profile.Key)
			if err := loadLegacy(profile, imagesDir, targetHeight, frames); err != nil {
				return nil, err
			}
		}
	} else {
		log.Printf("character assets: no directory %s, legacy mode", assetsDir)
		if err := loadLegacy(profile, imagesDir, targetHeight, frames); err != nil {
			return nil, err
		}
	}

	return frames, nil
}

// loadLegacy fills every empty emotion/mouth slot with the single legacy
// image. A missing legacy image on top of missing structured assets leaves
// the renderer with nothing to draw, so that is a hard error.
func loadLegacy(profile common.SpeakerProfile, imagesDir string, targetHeight int, frames *CharacterFrames) error {
	legacyPath := filepath.Join(imagesDir, profile.LegacyImage)
	img, err := common.LoadImage(legacyPath)
	if err != nil {
		return fmt.Errorf("no sprites for %s: %w", profile.Key, err)
	}
	resized := common.ResizeToHeight(img, targetHeight)

	for _, emotion := range common.Emotions() {
		if _, ok := frames.MouthClosed[emotion]; !ok {
			frames.MouthClosed[emotion] = resized
		}
		if _, ok := frames.MouthOpen[emotion]; !ok {
			frames.MouthOpen[emotion] = resized
		}
	}
	return nil
}

// ResolveEmotion maps a requested emotion to the one actually available in
// m, falling back to normal. Total by construction: loading guarantees a
// normal pose exists.
func ResolveEmotion(m map[common.Emotion]*image.RGBA, e common.Emotion) common.Emotion {
	if _, ok := m[e]; ok {
		return e
	}
	return common.EmotionNormal
}

// Sprite returns the bitmap for an emotion and mouth state, applying the
// emotion fallback. A missing open pose falls back to the closed one, which
// simply disables lip movement for that emotion.
func (f *CharacterFrames) Sprite(e common.Emotion, open bool) *image.RGBA {
	if open {
		if img := f.MouthOpen[ResolveEmotion(f.MouthOpen, e)]; img != nil {
			return img
		}
	}
	return f.MouthClosed[ResolveEmotion(f.MouthClosed, e)]
}
