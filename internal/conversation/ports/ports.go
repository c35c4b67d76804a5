// Package ports defines the collaborators the conversation flow depends on.
package ports

import (
	"context"

	"sdr_backend/internal/conversation/domain"
	leadsdomain "sdr_backend/internal/leads/domain"
	leadsservice "sdr_backend/internal/leads/service"

	"github.com/google/uuid"
)

// Conversationalist produces the assistant reply and extracted fields for a turn.
type Conversationalist interface {
	Converse(ctx context.Context, turn domain.Turn) (domain.Reply, error)
}

// LeadStore is the subset of the lead service used by conversations.
type LeadStore interface {
	CreateLead(ctx context.Context, contact string) (leadsservice.CreateResult, error)
	UpdateLead(ctx context.Context, id uuid.UUID, update leadsdomain.LeadUpdate) (leadsdomain.Lead, error)
}
