// Package gemini wraps the Google Gemini API for JSON-mode generation.
// Prompts and result types belong to the calling module.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sdr_backend/platform/config"

	"google.golang.org/genai"
)

// ErrUnparseable marks a model response that did not decode into the requested shape.
var ErrUnparseable = errors.New("gemini: unparseable response")

// Client issues single-turn JSON generations against one model.
type Client struct {
	client *genai.Client
	model  string
}

// New builds a client for the Gemini developer API.
func New(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if !cfg.IsGeminiEnabled() {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.GetGeminiModel()
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{client: client, model: model}, nil
}

// GenerateJSON sends prompt with an optional system instruction and decodes
// the JSON answer into out.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string, out any) error {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.4),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	return DecodeJSON(resp.Text(), out)
}

// DecodeJSON decodes a model answer, tolerating markdown code fences and
// prose around the JSON object.
func DecodeJSON(raw string, out any) error {
	body := extractJSONObject(raw)
	if body == "" {
		return fmt.Errorf("%w: no JSON object in %q", ErrUnparseable, truncate(raw, 120))
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return nil
}

func extractJSONObject(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
