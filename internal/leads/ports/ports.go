// Package ports defines the interfaces the leads domain requires from other
// modules. Adapters in the composition root satisfy them.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// CadenceScheduler gives a lead its initial follow-up cadence.
type CadenceScheduler interface {
	// EnsureInitialFollowups schedules the cadence when the lead has none yet
	// and reports whether it wrote one. A lead that already has follow-ups is
	// left untouched.
	EnsureInitialFollowups(ctx context.Context, leadID uuid.UUID) (bool, error)
}
