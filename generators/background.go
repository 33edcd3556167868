package generators

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/neuvecom/hebodan/common"
)

// BackgroundGenerator asks Gemini's image model for a themed backdrop. A
// generation failure is not fatal to the pipeline; callers fall back to the
// solid background color.
type BackgroundGenerator struct {
	cfg    *common.Config
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewBackgroundGenerator(ctx context.Context, cfg *common.Config) (*BackgroundGenerator, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.BGImageModel)
	return &BackgroundGenerator{cfg: cfg, client: client, model: model}, nil
}

func (b *BackgroundGenerator) Close() {
	b.client.Close()
}

// Generate returns a backdrop sized for the given frame. The raw model
// output is resized to fill the frame exactly.
func (b *BackgroundGenerator) Generate(ctx context.Context, theme string, width, height int) (*image.RGBA, error) {
	orientation := "横長16:9"
	if height > width {
		orientation = "縦長9:16"
	}
	prompt := fmt.Sprintf(`テーマ「%s」の会話動画の背景イラストを生成してください。
%sの構図。アニメ調のやわらかい色合いで、中央と下部は人物と字幕が乗るため
ごちゃごちゃさせず、落ち着いた背景にしてください。文字は入れないでください。`, theme, orientation)

	var lastErr error
	for attempt := 0; attempt < b.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(b.cfg.RetryBaseWait<<(attempt-1)) * time.Second
			log.Printf("[BG] Retry %d after %v: %v", attempt, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini image error: %w", err)
			continue
		}
		img, err := extractImage(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return common.Resize(img, width, height), nil
	}
	return nil, fmt.Errorf("background generation failed after %d attempts: %w", b.cfg.MaxRetries, lastErr)
}

func extractImage(resp *genai.GenerateContentResponse) (image.Image, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		blob, ok := part.(genai.Blob)
		if !ok {
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(blob.Data))
		if err != nil {
			return nil, fmt.Errorf("decode generated image: %w", err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("no image part in response")
}
