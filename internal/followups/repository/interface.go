package repository

import (
	"context"
	"time"

	"sdr_backend/internal/followups/domain"

	"github.com/google/uuid"
)

// NewFollowUp is one row of a cadence batch.
type NewFollowUp struct {
	ScheduledFor    time.Time
	MessageTemplate string
	Position        int
}

// DueFollowUp is a pending follow-up joined with its lead's contact.
type DueFollowUp struct {
	domain.FollowUp
	Contact string
}

// Cursor is the keyset position of the last row read by ListDue.
type Cursor struct {
	ScheduledFor time.Time
	ID           uuid.UUID
}

// Reader provides read access to follow-ups.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.FollowUp, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUp, error)
	// ListDue returns pending rows with scheduled_for <= now after cursor, oldest first.
	ListDue(ctx context.Context, now time.Time, after Cursor, limit int) ([]DueFollowUp, error)
}

// Writer provides follow-up mutations. Status writes are conditional on the
// row still being pending.
type Writer interface {
	// CreateBatch inserts a lead's whole cadence atomically. It fails with a
	// conflict when the lead already has follow-ups.
	CreateBatch(ctx context.Context, leadID uuid.UUID, items []NewFollowUp) ([]domain.FollowUp, error)
	// MarkSent reports false when the row was no longer pending.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error)
	// RecordFailure increments attempts on a pending row and returns the new count.
	RecordFailure(ctx context.Context, id uuid.UUID, message string) (int, error)
}

// Repository combines follow-up reads and writes.
type Repository interface {
	Reader
	Writer
}
