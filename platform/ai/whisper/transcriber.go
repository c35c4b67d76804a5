// Package whisper runs local speech-to-text with a whisper.cpp model that is
// loaded once at startup and shared by every request.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"sdr_backend/platform/audio"
	"sdr_backend/platform/config"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Transcriber owns a loaded model. Contexts are not safe for concurrent use,
// so transcriptions are serialized.
type Transcriber struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
}

// New loads the model file configured by WHISPER_MODEL_PATH.
func New(cfg config.WhisperConfig) (*Transcriber, error) {
	if !cfg.IsWhisperEnabled() {
		return nil, fmt.Errorf("whisper model path not configured")
	}

	model, err := whisper.New(cfg.GetWhisperModelPath())
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}

	language := cfg.GetWhisperLanguage()
	if language == "" {
		language = "pt"
	}
	return &Transcriber{model: model, language: language}, nil
}

// Close releases the model.
func (t *Transcriber) Close() error {
	if t == nil || t.model == nil {
		return nil
	}
	return t.model.Close()
}

// TranscribeWAV decodes a PCM16 WAV stream and returns the recognized text.
func (t *Transcriber) TranscribeWAV(ctx context.Context, r io.Reader) (string, error) {
	samples, err := audio.DecodeWAV(r)
	if err != nil {
		return "", err
	}
	return t.Transcribe(ctx, samples)
}

// Transcribe runs recognition on mono float32 samples at audio.SampleRate.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", audio.ErrEmptyAudio
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("create whisper context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language %s: %w", t.language, err)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process audio: %w", err)
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read segment: %w", err)
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(segment.Text))
	}

	return strings.TrimSpace(sb.String()), nil
}
