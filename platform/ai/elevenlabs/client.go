// Package elevenlabs calls the ElevenLabs text-to-speech HTTP API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sdr_backend/platform/config"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID = "eleven_multilingual_v2"

	maxAudioBytes = 16 << 20
	maxErrorBody  = 512
)

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("elevenlabs: empty text")

type Client struct {
	baseURL string
	apiKey  string
	voiceID string
	http    *http.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// New returns nil when no API key is configured.
func New(cfg config.SpeechConfig, opts ...Option) *Client {
	if !cfg.IsSpeechEnabled() {
		return nil
	}
	voice := cfg.GetElevenLabsVoiceID()
	if voice == "" {
		voice = DefaultVoiceID
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  cfg.GetElevenLabsAPIKey(),
		voiceID: voice,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize returns MP3 audio for text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       DefaultModelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("elevenlabs returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	return audio, nil
}
