package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	brokersdomain "sdr_backend/internal/brokers/domain"
	brokersrepo "sdr_backend/internal/brokers/repository"
	leadsdomain "sdr_backend/internal/leads/domain"
	leadsrepo "sdr_backend/internal/leads/repository"
	"sdr_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

const (
	lockLeadQuery       = `SELECT ` + leadsrepo.LeadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`
	brokerByRegionQuery = `SELECT ` + brokersrepo.BrokerColumns + ` FROM brokers WHERE specialty_region = $1 ORDER BY seq ASC LIMIT 1`
	defaultBrokerQuery  = `SELECT ` + brokersrepo.BrokerColumns + ` FROM brokers WHERE is_default ORDER BY seq ASC LIMIT 1`
	firstBrokerQuery    = `SELECT ` + brokersrepo.BrokerColumns + ` FROM brokers ORDER BY seq ASC LIMIT 1`
	assignBrokerQuery   = `
		UPDATE leads
		SET broker_id = $2, status = $3, handoff_at = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + leadsrepo.LeadColumns
	cancelPendingFollowUpsQuery = `
		UPDATE followups
		SET status = 'cancelled', updated_at = now()
		WHERE lead_id = $1 AND status = 'pending'`
)

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new handoff repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// WithTx runs fn in a read-committed transaction.
func (r *Repo) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit handoff: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockLead(ctx context.Context, leadID uuid.UUID) (leadsdomain.Lead, error) {
	lead, err := leadsrepo.ScanLead(t.tx.QueryRow(ctx, lockLeadQuery, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return leadsdomain.Lead{}, apperr.NotFound(leadNotFoundMessage)
	}
	if err != nil {
		return leadsdomain.Lead{}, fmt.Errorf("lock lead: %w", err)
	}
	return lead, nil
}

func (t *pgTx) BrokerByRegion(ctx context.Context, region string) (brokersdomain.Broker, bool, error) {
	return t.oneBroker(ctx, "broker by region", brokerByRegionQuery, region)
}

func (t *pgTx) DefaultBroker(ctx context.Context) (brokersdomain.Broker, bool, error) {
	return t.oneBroker(ctx, "default broker", defaultBrokerQuery)
}

func (t *pgTx) FirstBroker(ctx context.Context) (brokersdomain.Broker, bool, error) {
	return t.oneBroker(ctx, "first broker", firstBrokerQuery)
}

func (t *pgTx) oneBroker(ctx context.Context, op, query string, args ...any) (brokersdomain.Broker, bool, error) {
	b, err := brokersrepo.ScanBroker(t.tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return brokersdomain.Broker{}, false, nil
	}
	if err != nil {
		return brokersdomain.Broker{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return b, true, nil
}

func (t *pgTx) AssignBroker(ctx context.Context, leadID, brokerID uuid.UUID, at time.Time) (leadsdomain.Lead, error) {
	lead, err := leadsrepo.ScanLead(t.tx.QueryRow(ctx, assignBrokerQuery,
		leadID, brokerID, leadsdomain.StatusHandoffCompleted, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return leadsdomain.Lead{}, apperr.NotFound(leadNotFoundMessage)
	}
	if err != nil {
		return leadsdomain.Lead{}, fmt.Errorf("assign broker: %w", err)
	}
	return lead, nil
}

func (t *pgTx) CancelPendingFollowUps(ctx context.Context, leadID uuid.UUID) (int, error) {
	tag, err := t.tx.Exec(ctx, cancelPendingFollowUpsQuery, leadID)
	if err != nil {
		return 0, fmt.Errorf("cancel follow-ups: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
