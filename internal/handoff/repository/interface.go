package repository

import (
	"context"
	"time"

	brokers "sdr_backend/internal/brokers/domain"
	leads "sdr_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Tx is the set of statements a handoff runs inside one transaction.
type Tx interface {
	// LockLead loads the lead with a row lock held until commit.
	LockLead(ctx context.Context, leadID uuid.UUID) (leads.Lead, error)
	// BrokerByRegion returns the oldest broker whose region equals region exactly.
	BrokerByRegion(ctx context.Context, region string) (brokers.Broker, bool, error)
	// DefaultBroker returns the oldest broker flagged as default.
	DefaultBroker(ctx context.Context) (brokers.Broker, bool, error)
	// FirstBroker returns the oldest broker in the directory.
	FirstBroker(ctx context.Context) (brokers.Broker, bool, error)
	AssignBroker(ctx context.Context, leadID, brokerID uuid.UUID, at time.Time) (leads.Lead, error)
	// CancelPendingFollowUps moves every pending follow-up of the lead to
	// cancelled and returns how many rows changed.
	CancelPendingFollowUps(ctx context.Context, leadID uuid.UUID) (int, error)
}

// Repository runs handoffs atomically.
type Repository interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
