package repository

import (
	"context"

	"sdr_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetByContact(ctx context.Context, contact string) (domain.Lead, error)
}

// LeadWriter provides write operations on leads.
type LeadWriter interface {
	// Create inserts a lead for contact, or returns the existing one with created=false.
	Create(ctx context.Context, contact string) (lead domain.Lead, created bool, err error)
	Update(ctx context.Context, id uuid.UUID, update domain.LeadUpdate) (domain.Lead, error)
}

// Repository combines lead reads and writes.
type Repository interface {
	LeadReader
	LeadWriter
}
