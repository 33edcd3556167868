package common

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every knob the pipeline needs. It is built once in
// LoadConfig and passed down read-only; no package-level mutable state.
type Config struct {
	// Directories
	AssetsDir string
	ImagesDir string
	AudioDir  string
	FontsDir  string
	OutputDir string

	// Font
	FontPath string

	// Gemini
	GeminiKey    string
	GeminiModel  string
	BGImageModel string

	// COEIROINK
	CoeiroinkHost string

	// YouTube / X credentials
	YouTubeClientSecret string
	YouTubeTokenPath    string
	XAPIKey             string
	XAPISecret          string
	XAccessToken        string
	XAccessSecret       string

	// Video geometry
	LandscapeWidth  int
	LandscapeHeight int
	PortraitWidth   int
	PortraitHeight  int
	FPS             int

	// Visual constants
	BGColor             color.RGBA
	SubtitleFontSize    int
	SubtitleColor       color.RGBA
	SubtitleStrokeWidth int
	SubtitleStrokeColor color.RGBA

	// Lip sync
	MouthThreshold float64
	MinOpenFrames  int

	// Idle motion
	FloatAmplitude float64 // px
	FloatFrequency float64 // Hz
	LogoJitterAmp  float64 // px

	// Opening timing (seconds from opening start)
	OpeningDuration     float64
	OpeningLogoFadeIn   float64
	OpeningZoomStart    float64
	OpeningZoomEnd      float64
	OpeningTitleFadeIn  float64
	OpeningTitleFadeDur float64
	OpeningFadeOutStart float64
	OpeningVoiceAStart  float64
	OpeningVoiceBStart  float64

	// Ending timing
	EndingLeadIn      float64
	EndingGap         float64
	EndingFadeIn      float64
	EndingFadeOutDur  float64
	EndingFadeDelay   float64 // after second closing line starts
	EndingTrailHold   float64
	EndingBounceSpeed float64 // px/s in portrait mode

	// Retry policy for generation services
	MaxRetries    int
	RetryBaseWait int // seconds, doubled per attempt

	Speakers [2]SpeakerProfile
}

// LoadConfig resolves the project root, reads .env if present and builds the
// full configuration with defaults matching the production channel setup.
func LoadConfig(root string) (*Config, error) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	// Missing .env is fine; env vars may come from the shell.
	_ = godotenv.Load(filepath.Join(absRoot, ".env"))

	assetsDir := filepath.Join(absRoot, "assets")
	cfg := &Config{
		AssetsDir: assetsDir,
		ImagesDir: filepath.Join(assetsDir, "images"),
		AudioDir:  filepath.Join(assetsDir, "audio"),
		FontsDir:  filepath.Join(assetsDir, "fonts"),
		OutputDir: filepath.Join(absRoot, "output"),

		GeminiKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		BGImageModel: envOr("BG_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),

		CoeiroinkHost: envOr("COEIROINK_HOST", "http://localhost:50032"),

		YouTubeClientSecret: envOr("YOUTUBE_CLIENT_SECRET", filepath.Join(absRoot, "client_secret.json")),
		YouTubeTokenPath:    envOr("YOUTUBE_TOKEN_PATH", filepath.Join(absRoot, ".youtube_token.json")),
		XAPIKey:             os.Getenv("X_API_KEY"),
		XAPISecret:          os.Getenv("X_API_SECRET"),
		XAccessToken:        os.Getenv("X_ACCESS_TOKEN"),
		XAccessSecret:       os.Getenv("X_ACCESS_TOKEN_SECRET"),

		LandscapeWidth:  1920,
		LandscapeHeight: 1080,
		PortraitWidth:   1080,
		PortraitHeight:  1920,
		FPS:             24,

		BGColor:             color.RGBA{20, 20, 40, 255},
		SubtitleFontSize:    48,
		SubtitleColor:       color.RGBA{255, 255, 255, 255},
		SubtitleStrokeWidth: 2,
		SubtitleStrokeColor: color.RGBA{0, 0, 0, 255},

		MouthThreshold: 0.15,
		MinOpenFrames:  2,

		FloatAmplitude: 8,
		FloatFrequency: 0.4,
		LogoJitterAmp:  1.5,

		OpeningDuration:     7.0,
		OpeningLogoFadeIn:   0.5,
		OpeningZoomStart:    0.5,
		OpeningZoomEnd:      2.0,
		OpeningTitleFadeIn:  2.0,
		OpeningTitleFadeDur: 0.6,
		OpeningFadeOutStart: 6.0,
		OpeningVoiceAStart:  2.5,
		OpeningVoiceBStart:  4.0,

		EndingLeadIn:      0.5,
		EndingGap:         0.6,
		EndingFadeIn:      0.8,
		EndingFadeOutDur:  1.5,
		EndingFadeDelay:   1.0,
		EndingTrailHold:   0.5,
		EndingBounceSpeed: 90,

		MaxRetries:    3,
		RetryBaseWait: 2,
	}

	fontName := envOr("FONT_NAME", "NotoSansJP-Bold.ttf")
	cfg.FontPath = filepath.Join(cfg.FontsDir, fontName)

	cfg.Speakers = [2]SpeakerProfile{
		{
			Key:             SpeakerTsuno,
			Name:            "つの",
			AssetDir:        "tsuno",
			LegacyImage:     "tsuno.png",
			SpeakerUUID:     os.Getenv("TSUNO_SPEAKER_UUID"),
			StyleID:         envInt("TSUNO_STYLE_ID", 0),
			OpeningVoice:    "opening_tsuno.wav",
			EndingCallVoice: "ending_call_tsuno.wav",
			EndingVoice:     "ending_tsuno.wav",
		},
		{
			Key:             SpeakerMegane,
			Name:            "めがね",
			AssetDir:        "megane",
			LegacyImage:     "megane.png",
			SpeakerUUID:     os.Getenv("MEGANE_SPEAKER_UUID"),
			StyleID:         envInt("MEGANE_STYLE_ID", 0),
			OpeningVoice:    "opening_megane.wav",
			EndingCallVoice: "ending_call_megane.wav",
			EndingVoice:     "ending_megane.wav",
		},
	}

	return cfg, nil
}

// Profile returns the attribute bundle for a speaker. Unknown speakers are a
// hard input-data error, not a fallback case.
func (c *Config) Profile(s Speaker) (SpeakerProfile, error) {
	for _, p := range c.Speakers {
		if p.Key == s {
			return p, nil
		}
	}
	return SpeakerProfile{}, fmt.Errorf("unknown speaker: %q", s)
}

// SEDir is where jingles and opening/ending voice-overs live.
func (c *Config) SEDir() string {
	return filepath.Join(c.AudioDir, "se")
}

// LogoPath is the channel dialogue logo shown in scenes and on thumbnails.
func (c *Config) LogoPath() string {
	return filepath.Join(c.ImagesDir, "logo.png")
}

// ReadingDictPath is the optional pronunciation dictionary for TTS.
func (c *Config) ReadingDictPath() string {
	return filepath.Join(c.AssetsDir, "reading_dict.txt")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
