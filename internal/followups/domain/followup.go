// Package domain holds the follow-up model and its status rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Follow-up statuses. Pending is the only non-terminal status.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusCancelled = "cancelled"
)

// FollowUp is a scheduled outbound message tied to a lead.
type FollowUp struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	ScheduledFor    time.Time
	Status          string
	MessageTemplate string
	Position        int
	Attempts        int
	LastError       *string
	SentAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsDue reports whether the follow-up should be delivered at now.
func (f FollowUp) IsDue(now time.Time) bool {
	return f.Status == StatusPending && !f.ScheduledFor.After(now)
}

// CanTransition reports whether a follow-up may move from one status to another.
func CanTransition(from, to string) bool {
	return from == StatusPending && (to == StatusSent || to == StatusCancelled)
}
