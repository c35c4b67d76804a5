// Package domain holds the conversation log model.
package domain

import (
	"time"

	leads "sdr_backend/internal/leads/domain"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	// FallbackReply is sent when the conversation model is unavailable.
	FallbackReply = "Desculpe, estou com um problema técnico no momento."
	// UnclearReply is sent when the model answered without a reply text.
	UnclearReply = "Não entendi, pode repetir?"
)

// Message is one append-only entry in a lead's conversation log.
type Message struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

// Turn is the input to one conversation step.
type Turn struct {
	// Known holds the qualification fields already collected.
	Known map[string]any
	// History is the recent log in chronological order, ending with the
	// message being answered.
	History []Message
}

// Reply is the typed result of a conversation step.
type Reply struct {
	Update leads.LeadUpdate
	Text   string
}
