// Package ports defines the collaborators of the lead media flow.
package ports

import (
	"context"
	"io"

	followupsdomain "sdr_backend/internal/followups/domain"
	leadsdomain "sdr_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Transcriber turns a WAV recording into text.
type Transcriber interface {
	TranscribeWAV(ctx context.Context, r io.Reader) (string, error)
}

// Extractor pulls qualification fields from free text.
type Extractor interface {
	Extract(ctx context.Context, text string, known map[string]any) (leadsdomain.LeadUpdate, error)
}

// Synthesizer renders text as MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ObjectStore persists uploaded recordings.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// LeadStore is the subset of the lead service used by media.
type LeadStore interface {
	GetLeadByContact(ctx context.Context, contact string) (leadsdomain.Lead, error)
	UpdateLead(ctx context.Context, id uuid.UUID, update leadsdomain.LeadUpdate) (leadsdomain.Lead, error)
}

// FollowUpReader loads follow-ups by id.
type FollowUpReader interface {
	GetFollowUp(ctx context.Context, id uuid.UUID) (followupsdomain.FollowUp, error)
}
