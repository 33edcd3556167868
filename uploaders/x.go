package uploaders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/neuvecom/hebodan/common"
)

const tweetEndpoint = "https://api.x.com/2/tweets"

// XPoster announces a published video on X with OAuth 1.0a user-context
// authentication.
type XPoster struct {
	httpClient *http.Client
}

func NewXPoster(cfg *common.Config) (*XPoster, error) {
	if cfg.XAPIKey == "" || cfg.XAPISecret == "" || cfg.XAccessToken == "" || cfg.XAccessSecret == "" {
		return nil, fmt.Errorf("X API credentials are not fully configured")
	}
	oauthCfg := oauth1.NewConfig(cfg.XAPIKey, cfg.XAPISecret)
	token := oauth1.NewToken(cfg.XAccessToken, cfg.XAccessSecret)
	client := oauthCfg.Client(oauth1.NoContext, token)
	client.Timeout = 30 * time.Second
	return &XPoster{httpClient: client}, nil
}

// Post publishes text as a tweet and returns its ID. The video URL, when
// given, is appended on its own line.
func (x *XPoster) Post(ctx context.Context, text, videoURL string) (string, error) {
	if videoURL != "" {
		text = text + "\n" + videoURL
	}
	body, _ := json.Marshal(map[string]string{"text": text})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tweetEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("X API error: %d - %s", resp.StatusCode, string(msg))
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}
	log.Printf("[X] ✓ Posted: https://x.com/i/status/%s", result.Data.ID)
	return result.Data.ID, nil
}
