package uploaders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/neuvecom/hebodan/common"
)

// YouTubeUploader publishes finished videos with the YouTube Data API. OAuth
// tokens are cached on disk; the first run walks through the installed-app
// consent flow on the terminal.
type YouTubeUploader struct {
	cfg     *common.Config
	service *youtube.Service
}

func NewYouTubeUploader(ctx context.Context, cfg *common.Config) (*YouTubeUploader, error) {
	secret, err := os.ReadFile(cfg.YouTubeClientSecret)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secret, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}

	token, err := loadToken(cfg.YouTubeTokenPath)
	if err != nil {
		token, err = tokenFromConsole(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.YouTubeTokenPath, token); err != nil {
			log.Printf("[YOUTUBE] Could not cache token: %v", err)
		}
	}

	service, err := youtube.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTubeUploader{cfg: cfg, service: service}, nil
}

// Upload publishes videoPath and, when thumbnailPath is non-empty, sets the
// custom thumbnail. Returns the new video ID.
func (u *YouTubeUploader) Upload(ctx context.Context, videoPath, thumbnailPath, title, description string, tags []string, privacy string) (string, error) {
	if privacy == "" {
		privacy = "private"
	}
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        tags,
			CategoryId:  "28", // Science & Technology
		},
		Status: &youtube.VideoStatus{PrivacyStatus: privacy},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	log.Printf("[YOUTUBE] Uploading %s ...", videoPath)
	call := u.service.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Context(ctx).Media(f).Do()
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}
	log.Printf("[YOUTUBE] ✓ Uploaded: https://youtu.be/%s", uploaded.Id)

	if thumbnailPath != "" {
		thumb, err := os.Open(thumbnailPath)
		if err != nil {
			return uploaded.Id, fmt.Errorf("open thumbnail: %w", err)
		}
		defer thumb.Close()
		if _, err := u.service.Thumbnails.Set(uploaded.Id).Context(ctx).Media(thumb).Do(); err != nil {
			return uploaded.Id, fmt.Errorf("set thumbnail: %w", err)
		}
		log.Println("[YOUTUBE] ✓ Thumbnail set")
	}
	return uploaded.Id, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromConsole runs the manual copy-paste consent flow.
func tokenFromConsole(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL in a browser, authorize, then paste the code:\n%s\n> ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read auth code: %w", err)
	}
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange auth code: %w", err)
	}
	return token, nil
}
