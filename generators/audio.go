package generators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/neuvecom/hebodan/common"
)

// TTSClient talks to a local COEIROINK server. Each dialogue line becomes
// one WAV file; the text sent for synthesis has reading annotations applied
// and display-only markup stripped.
type TTSClient struct {
	cfg        *common.Config
	httpClient *http.Client
	readings   map[string]string
}

func NewTTSClient(cfg *common.Config) *TTSClient {
	readings, err := common.LoadReadingDict(cfg.ReadingDictPath())
	if err != nil {
		log.Printf("[TTS] Reading dict unavailable: %v", err)
		readings = map[string]string{}
	}
	return &TTSClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		readings:   readings,
	}
}

// CheckAvailable verifies the server answers and that both configured
// speaker UUIDs are registered on it.
func (t *TTSClient) CheckAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.CoeiroinkHost+"/v1/speakers", nil)
	if err != nil {
		return err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("COEIROINK not reachable at %s: %w", t.cfg.CoeiroinkHost, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("COEIROINK speakers endpoint returned %d", resp.StatusCode)
	}

	var speakers []struct {
		SpeakerUUID string `json:"speakerUuid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return fmt.Errorf("decode speakers list: %w", err)
	}
	registered := make(map[string]bool, len(speakers))
	for _, s := range speakers {
		registered[s.SpeakerUUID] = true
	}
	for _, p := range t.cfg.Speakers {
		if p.SpeakerUUID == "" {
			return fmt.Errorf("speaker UUID for %s is not configured", p.Key)
		}
		if !registered[p.SpeakerUUID] {
			return fmt.Errorf("speaker %s (uuid %s) is not registered on the server", p.Key, p.SpeakerUUID)
		}
	}
	return nil
}

// GenerateAll synthesizes every dialogue line into outDir and returns the
// file paths index-aligned with the dialogue.
func (t *TTSClient) GenerateAll(ctx context.Context, dialogue []common.DialogueLine, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	paths := make([]string, len(dialogue))
	for i, line := range dialogue {
		profile, err := t.cfg.Profile(line.Speaker)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		spoken := common.SpokenText(line.Text, t.readings)

		outPath := filepath.Join(outDir, fmt.Sprintf("line_%03d.wav", i))
		if err := t.synthesize(ctx, spoken, profile, outPath); err != nil {
			return nil, fmt.Errorf("synthesize line %d: %w", i, err)
		}
		paths[i] = outPath
		log.Printf("[TTS] ✓ Line %d/%d (%s)", i+1, len(dialogue), profile.Key)
	}
	return paths, nil
}

// synthesize runs the two-step COEIROINK flow: estimate prosody for the
// text, then synthesize with that prosody. Transient failures are retried
// with backoff.
func (t *TTSClient) synthesize(ctx context.Context, text string, profile common.SpeakerProfile, outPath string) error {
	var lastErr error
	for attempt := 0; attempt < t.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(t.cfg.RetryBaseWait<<(attempt-1)) * time.Second
			log.Printf("[TTS] Retry %d after %v: %v", attempt, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		prosody, err := t.estimateProsody(ctx, text)
		if err != nil {
			lastErr = err
			continue
		}
		wav, err := t.requestSynthesis(ctx, text, profile, prosody)
		if err != nil {
			lastErr = err
			continue
		}
		return os.WriteFile(outPath, wav, 0644)
	}
	return fmt.Errorf("after %d attempts: %w", t.cfg.MaxRetries, lastErr)
}

func (t *TTSClient) estimateProsody(ctx context.Context, text string) (json.RawMessage, error) {
	body, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.CoeiroinkHost+"/v1/estimate_prosody", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("estimate prosody: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("estimate prosody: %d - %s", resp.StatusCode, string(msg))
	}

	var result struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode prosody: %w", err)
	}
	return result.Detail, nil
}

func (t *TTSClient) requestSynthesis(ctx context.Context, text string, profile common.SpeakerProfile, prosody json.RawMessage) ([]byte, error) {
	payload := map[string]interface{}{
		"speakerUuid":        profile.SpeakerUUID,
		"styleId":            profile.StyleID,
		"text":               text,
		"prosodyDetail":      prosody,
		"speedScale":         1.0,
		"volumeScale":        1.0,
		"pitchScale":         0.0,
		"intonationScale":    1.0,
		"prePhonemeLength":   0.1,
		"postPhonemeLength":  0.3,
		"outputSamplingRate": 44100,
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.CoeiroinkHost+"/v1/synthesis", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synthesis: %d - %s", resp.StatusCode, string(msg))
	}
	return io.ReadAll(resp.Body)
}
