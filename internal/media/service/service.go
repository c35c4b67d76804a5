// Package service handles lead audio messages and speech synthesis.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/internal/media/ports"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/audio"
	"sdr_backend/platform/logger"

	"github.com/google/uuid"
)

const maxSpeechText = 2500

// Upload is an inbound audio file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AudioResult is returned by ProcessAudio.
type AudioResult struct {
	Lead          leadsdomain.Lead
	StoragePath   string
	Transcript    string
	UpdatedFields map[string]any
}

// Deps groups the collaborators of the media service. Any of them may be nil
// when the matching integration is not configured.
type Deps struct {
	Leads       ports.LeadStore
	FollowUps   ports.FollowUpReader
	Store       ports.ObjectStore
	Bucket      string
	Transcriber ports.Transcriber
	Extractor   ports.Extractor
	Speech      ports.Synthesizer
}

// Service processes audio for leads.
type Service struct {
	deps Deps
	log  *logger.Logger
}

// New creates a media service.
func New(deps Deps, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{deps: deps, log: log}
}

// ProcessAudio stores the recording, transcribes it and applies the fields
// extracted from the transcript. An extraction failure leaves the lead
// unchanged and still returns the transcript.
func (s *Service) ProcessAudio(ctx context.Context, contact string, up Upload) (AudioResult, error) {
	lead, err := s.deps.Leads.GetLeadByContact(ctx, contact)
	if err != nil {
		return AudioResult{}, err
	}
	if s.deps.Transcriber == nil {
		return AudioResult{}, apperr.Unavailable("speech-to-text is not configured", nil)
	}

	data, err := s.readUpload(up)
	if err != nil {
		return AudioResult{}, err
	}

	res := AudioResult{Lead: lead, UpdatedFields: map[string]any{}}
	if s.deps.Store != nil {
		key, err := s.deps.Store.UploadFile(ctx, s.deps.Bucket, lead.Contact, up.FileName, up.ContentType, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			s.log.CollaboratorFailure("minio", "upload audio", err)
			return AudioResult{}, apperr.Unavailable("audio upload failed", err)
		}
		res.StoragePath = key
	}

	transcript, err := s.deps.Transcriber.TranscribeWAV(ctx, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, audio.ErrUnsupportedAudio) || errors.Is(err, audio.ErrEmptyAudio) {
			return AudioResult{}, apperr.Validation(err.Error())
		}
		s.log.CollaboratorFailure("whisper", "transcribe", err)
		return AudioResult{}, apperr.Unavailable("transcription failed", err)
	}
	res.Transcript = strings.TrimSpace(transcript)

	if res.Transcript == "" || s.deps.Extractor == nil {
		return res, nil
	}
	update, err := s.deps.Extractor.Extract(ctx, res.Transcript, lead.KnownFields())
	if err != nil {
		s.log.CollaboratorFailure("gemini", "extract fields", err)
		return res, nil
	}
	if update.IsEmpty() {
		return res, nil
	}

	updated, err := s.deps.Leads.UpdateLead(ctx, lead.ID, update)
	if err != nil {
		return AudioResult{}, err
	}
	res.Lead = updated
	res.UpdatedFields = update.Fields()
	return res, nil
}

func (s *Service) readUpload(up Upload) ([]byte, error) {
	if up.Body == nil {
		return nil, apperr.Validation("audio file is required")
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.ValidateContentType(up.ContentType); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if err := s.deps.Store.ValidateFileSize(up.Size); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}
	data, err := io.ReadAll(up.Body)
	if err != nil {
		return nil, apperr.BadRequest("could not read audio file")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("audio file is empty")
	}
	return data, nil
}

// SynthesizeFollowUp renders a follow-up's message as audio.
func (s *Service) SynthesizeFollowUp(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if s.deps.FollowUps == nil {
		return nil, apperr.Unavailable("follow-ups are not available", nil)
	}
	f, err := s.deps.FollowUps.GetFollowUp(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SynthesizeText(ctx, f.MessageTemplate)
}

// SynthesizeText renders text as MP3 audio.
func (s *Service) SynthesizeText(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	if len([]rune(text)) > maxSpeechText {
		return nil, apperr.Validation(fmt.Sprintf("text must be at most %d characters", maxSpeechText))
	}
	if s.deps.Speech == nil {
		return nil, apperr.Unavailable("text-to-speech is not configured", nil)
	}
	out, err := s.deps.Speech.Synthesize(ctx, text)
	if err != nil {
		s.log.CollaboratorFailure("elevenlabs", "synthesize", err)
		return nil, apperr.Unavailable("speech synthesis failed", err)
	}
	return out, nil
}
