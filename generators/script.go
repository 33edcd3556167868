package generators

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/neuvecom/hebodan/common"
)

// ScriptGenerator asks Gemini for a complete episode script: dialogue with
// emotions plus the video title, note article and X post text, all in one
// JSON document.
type ScriptGenerator struct {
	cfg    *common.Config
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewScriptGenerator(ctx context.Context, cfg *common.Config) (*ScriptGenerator, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(0.9)
	model.ResponseMIMEType = "application/json"

	return &ScriptGenerator{cfg: cfg, client: client, model: model}, nil
}

func (g *ScriptGenerator) Close() {
	g.client.Close()
}

// Generate produces a validated script for the given theme. Malformed JSON
// from the model is retried with backoff before giving up.
func (g *ScriptGenerator) Generate(ctx context.Context, theme string) (*common.ScriptData, error) {
	prompt := g.buildPrompt(theme)

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(g.cfg.RetryBaseWait<<(attempt-1)) * time.Second
			log.Printf("[SCRIPT] Retry %d after %v: %v", attempt, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("gemini generation error: %w", err)
			continue
		}
		text, err := extractText(resp)
		if err != nil {
			lastErr = err
			continue
		}
		script, err := common.ParseScript([]byte(stripCodeFence(text)))
		if err != nil {
			lastErr = err
			continue
		}
		if script.Meta.Theme == "" {
			script.Meta.Theme = theme
		}
		return script, nil
	}
	return nil, fmt.Errorf("script generation failed after %d attempts: %w", g.cfg.MaxRetries, lastErr)
}

func (g *ScriptGenerator) buildPrompt(theme string) string {
	a, b := g.cfg.Speakers[0], g.cfg.Speakers[1]
	return fmt.Sprintf(`あなたは2人組キャラクターの掛け合い動画の放送作家です。
テーマ「%s」について、%sと%sの会話形式で台本を書いてください。

キャラクター設定:
- %s (speaker: "%s"): 元気で好奇心旺盛。ボケ役。話題を振ったり素朴な疑問をぶつける。
- %s (speaker: "%s"): 冷静な解説役。ツッコミ役。わかりやすく丁寧に説明する。

ルール:
- 会話は15〜25往復程度。テンポよく、たまに笑いを入れる。
- 各行の emotion は normal / happy / angry / sad / surprised のいずれか。
- 難読漢字には 漢字<よみ> の形式で読みがなを付ける。読みはTTSにのみ使われる。
- 画面にだけ出したい注釈は [[注釈]] で囲む。
- ショート動画でカットしてよい補足的な行には "shorts_skip": true を付ける。
- タイトルは検索されやすい具体的なものにする。

次のJSONだけを返してください:
{
  "meta": {"theme": "...", "title": "..."},
  "dialogue": [
    {"speaker": "%s", "text": "...", "emotion": "normal"},
    {"speaker": "%s", "text": "...", "emotion": "happy", "shorts_skip": true}
  ],
  "note_content": "動画の内容をまとめたnote記事本文（800字程度）",
  "x_post_content": "動画告知用のXポスト本文（140字以内、ハッシュタグ付き）"
}`,
		theme, a.Name, b.Name,
		a.Name, a.Key, b.Name, b.Key,
		a.Key, b.Key)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

// stripCodeFence removes a ```json ... ``` wrapper some model responses
// still add despite the JSON response type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
