// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"sdr_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Handoff Domain Events
// =============================================================================

// HandoffCompleted is published after a handoff commits.
type HandoffCompleted struct {
	BaseEvent
	LeadID             uuid.UUID `json:"leadId"`
	Contact            string    `json:"contact"`
	BrokerID           uuid.UUID `json:"brokerId"`
	BrokerName         string    `json:"brokerName"`
	BrokerEmail        string    `json:"brokerEmail"`
	Summary            string    `json:"summary"`
	CancelledFollowUps int       `json:"cancelledFollowUps"`
	HandoffAt          time.Time `json:"handoffAt"`
}

func (e HandoffCompleted) EventName() string { return "handoff.completed" }
