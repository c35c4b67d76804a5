package transport

import (
	"time"

	"sdr_backend/internal/followups/domain"

	"github.com/google/uuid"
)

type FollowUpResponse struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          uuid.UUID  `json:"leadId"`
	ScheduledFor    time.Time  `json:"scheduledFor"`
	Status          string     `json:"status"`
	MessageTemplate string     `json:"messageTemplate"`
	Position        int        `json:"position"`
	Attempts        int        `json:"attempts"`
	LastError       *string    `json:"lastError,omitempty"`
	SentAt          *time.Time `json:"sentAt"`
}

type FollowUpListResponse struct {
	Items []FollowUpResponse `json:"items"`
}

// ToFollowUpList maps domain follow-ups to their wire form.
func ToFollowUpList(items []domain.FollowUp) FollowUpListResponse {
	out := make([]FollowUpResponse, 0, len(items))
	for _, f := range items {
		out = append(out, FollowUpResponse{
			ID:              f.ID,
			LeadID:          f.LeadID,
			ScheduledFor:    f.ScheduledFor,
			Status:          f.Status,
			MessageTemplate: f.MessageTemplate,
			Position:        f.Position,
			Attempts:        f.Attempts,
			LastError:       f.LastError,
			SentAt:          f.SentAt,
		})
	}
	return FollowUpListResponse{Items: out}
}
