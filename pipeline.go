package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/neuvecom/hebodan/common"
	"github.com/neuvecom/hebodan/compose"
	"github.com/neuvecom/hebodan/generators"
	"github.com/neuvecom/hebodan/textrender"
	"github.com/neuvecom/hebodan/uploaders"
)

// PipelineOptions selects which stages of an episode run execute.
type PipelineOptions struct {
	Theme         string
	ScriptPath    string // reuse an existing script.json instead of generating
	ThumbnailOnly bool
	Draft         bool // stop after rendering, no upload or post
	Upload        bool
	Post          bool
}

// Pipeline runs one episode end to end: script, voices, backdrop, both
// video cuts, thumbnail, and optionally publication.
type Pipeline struct {
	cfg  *common.Config
	rast *textrender.Rasterizer
}

func NewPipeline(cfg *common.Config) (*Pipeline, error) {
	rast, err := textrender.NewRasterizer(cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", cfg.FontPath, err)
	}
	return &Pipeline{cfg: cfg, rast: rast}, nil
}

func (p *Pipeline) Run(ctx context.Context, opts PipelineOptions) error {
	outDir := filepath.Join(p.cfg.OutputDir, "run_"+time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	log.Printf("[PIPELINE] Output: %s", outDir)

	log.Println("[PIPELINE] Step 1: Script")
	script, err := p.obtainScript(ctx, opts, outDir)
	if err != nil {
		return err
	}

	log.Println("[PIPELINE] Step 2: Background art")
	background := p.obtainBackground(ctx, script.Meta.Theme, outDir)

	if opts.ThumbnailOnly {
		log.Println("[PIPELINE] Step 3: Thumbnail only")
		return p.makeThumbnail(background, script.Meta.Title, outDir)
	}

	log.Println("[PIPELINE] Step 3: Voice synthesis")
	tts := generators.NewTTSClient(p.cfg)
	if err := tts.CheckAvailable(ctx); err != nil {
		return fmt.Errorf("TTS unavailable: %w", err)
	}
	lineAudio, err := tts.GenerateAll(ctx, script.Dialogue, filepath.Join(outDir, "voice"))
	if err != nil {
		return err
	}

	log.Println("[PIPELINE] Step 4: Landscape video")
	landscapePath := filepath.Join(outDir, "video.mp4")
	if err := p.renderCut(script, lineAudio, background, compose.LandscapeLayout(p.cfg), outDir, "landscape", landscapePath); err != nil {
		return err
	}

	log.Println("[PIPELINE] Step 5: Portrait video")
	portraitPath := filepath.Join(outDir, "shorts.mp4")
	if err := p.renderCut(script, lineAudio, background, compose.PortraitLayout(p.cfg), outDir, "portrait", portraitPath); err != nil {
		return err
	}

	log.Println("[PIPELINE] Step 6: Thumbnail")
	if err := p.makeThumbnail(background, script.Meta.Title, outDir); err != nil {
		return err
	}

	if opts.Draft || (!opts.Upload && !opts.Post) {
		log.Println("[PIPELINE] Draft run, skipping publication")
		return nil
	}

	var videoURL string
	if opts.Upload {
		log.Println("[PIPELINE] Step 7: YouTube upload")
		videoURL, err = p.publish(ctx, script, landscapePath, filepath.Join(outDir, "thumbnail.png"))
		if err != nil {
			return err
		}
	}
	if opts.Post && script.XPostContent != "" {
		log.Println("[PIPELINE] Step 8: X post")
		poster, err := uploaders.NewXPoster(p.cfg)
		if err != nil {
			return err
		}
		if _, err := poster.Post(ctx, script.XPostContent, videoURL); err != nil {
			return err
		}
	}
	return nil
}

// obtainScript loads the script file when one was given, otherwise asks the
// LLM. Either way the script used for the run is saved next to the outputs.
func (p *Pipeline) obtainScript(ctx context.Context, opts PipelineOptions, outDir string) (*common.ScriptData, error) {
	var script *common.ScriptData
	if opts.ScriptPath != "" {
		data, err := os.ReadFile(opts.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		script, err = common.ParseScript(data)
		if err != nil {
			return nil, err
		}
	} else {
		gen, err := generators.NewScriptGenerator(ctx, p.cfg)
		if err != nil {
			return nil, err
		}
		defer gen.Close()
		script, err = gen.Generate(ctx, opts.Theme)
		if err != nil {
			return nil, err
		}
	}

	data, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "script.json"), data, 0644); err != nil {
		return nil, fmt.Errorf("save script: %w", err)
	}
	if script.NoteContent != "" {
		if err := os.WriteFile(filepath.Join(outDir, "note.md"), []byte(script.NoteContent), 0644); err != nil {
			return nil, fmt.Errorf("save note article: %w", err)
		}
	}
	log.Printf("[PIPELINE] ✓ Script: %q, %d lines", script.Meta.Title, len(script.Dialogue))
	return script, nil
}

// obtainBackground tries the image model and falls back to the flat
// background color. The generated art is saved for reuse and review.
func (p *Pipeline) obtainBackground(ctx context.Context, theme, outDir string) *image.RGBA {
	gen, err := generators.NewBackgroundGenerator(ctx, p.cfg)
	if err != nil {
		log.Printf("[PIPELINE] Background generator unavailable: %v", err)
		return nil
	}
	defer gen.Close()

	bg, err := gen.Generate(ctx, theme, p.cfg.LandscapeWidth, p.cfg.LandscapeHeight)
	if err != nil {
		log.Printf("[PIPELINE] Background generation failed, using flat color: %v", err)
		return nil
	}
	if err := common.SaveImage(filepath.Join(outDir, "background.png"), bg); err != nil {
		log.Printf("[PIPELINE] Could not save background: %v", err)
	}
	return bg
}

// renderCut builds one orientation's timeline and renders it to outputPath.
func (p *Pipeline) renderCut(script *common.ScriptData, lineAudio []string, background *image.RGBA, layout compose.Layout, outDir, name, outputPath string) error {
	deps, err := p.buildDeps(layout, background)
	if err != nil {
		return err
	}

	workDir := filepath.Join(outDir, "work_"+name)
	renderer, err := compose.NewRenderer(p.cfg.FPS, workDir)
	if err != nil {
		return err
	}
	defer renderer.Cleanup()

	tl, err := compose.BuildTimeline(deps, script, lineAudio, workDir)
	if err != nil {
		return err
	}
	log.Printf("[PIPELINE] %s timeline: %d clips, %.1fs", name, len(tl.Clips), tl.TotalDuration())

	if err := renderer.RenderTimeline(tl, outputPath); err != nil {
		return err
	}
	if got, err := compose.ProbeDuration(outputPath); err == nil {
		log.Printf("[PIPELINE] ✓ Rendered %s (%.1fs)", outputPath, got)
	} else {
		log.Printf("[PIPELINE] ✓ Rendered %s", outputPath)
	}
	return nil
}

func (p *Pipeline) buildDeps(layout compose.Layout, background *image.RGBA) (*compose.Deps, error) {
	frames := make(map[common.Speaker]*compose.CharacterFrames, len(p.cfg.Speakers))
	for _, profile := range p.cfg.Speakers {
		f, err := compose.LoadCharacterFrames(profile, p.cfg.ImagesDir, layout.CharHeight)
		if err != nil {
			return nil, fmt.Errorf("load sprites for %s: %w", profile.Key, err)
		}
		frames[profile.Key] = f
	}

	deps := &compose.Deps{
		Cfg:        p.cfg,
		Layout:     layout,
		Frames:     frames,
		Rasterizer: p.rast,
	}
	if background != nil {
		deps.Background = common.Resize(background, layout.Width, layout.Height)
	}
	if logo, err := common.LoadImage(p.cfg.LogoPath()); err == nil {
		deps.Logo = common.ResizeToHeight(logo, layout.LogoHeight)
	} else {
		log.Printf("[PIPELINE] No logo image: %v", err)
	}
	return deps, nil
}

func (p *Pipeline) makeThumbnail(background *image.RGBA, title, outDir string) error {
	if background == nil {
		background = compose.SolidBackground(p.cfg.LandscapeWidth, p.cfg.LandscapeHeight, p.cfg.BGColor)
	}
	var logo *image.RGBA
	if img, err := common.LoadImage(p.cfg.LogoPath()); err == nil {
		logo = img
	}
	outPath := filepath.Join(outDir, "thumbnail.png")
	if err := generators.GenerateThumbnail(p.cfg, p.rast, background, logo, title, outPath); err != nil {
		return err
	}
	log.Printf("[PIPELINE] ✓ Thumbnail %s", outPath)
	return nil
}

// publish uploads the landscape cut and returns its watch URL.
func (p *Pipeline) publish(ctx context.Context, script *common.ScriptData, videoPath, thumbnailPath string) (string, error) {
	uploader, err := uploaders.NewYouTubeUploader(ctx, p.cfg)
	if err != nil {
		return "", err
	}

	description := script.NoteContent
	if description == "" {
		description = script.Meta.Theme
	}
	tags := []string{"解説", "ゆっくり", script.Meta.Theme}

	id, err := uploader.Upload(ctx, videoPath, thumbnailPath, script.Meta.Title, description, tags, "private")
	if err != nil {
		return "", err
	}
	return "https://youtu.be/" + strings.TrimSpace(id), nil
}
