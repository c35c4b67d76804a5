package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sdr_backend/internal/brokers/domain"
	"sdr_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const brokerNotFoundMessage = "broker not found"

// BrokerColumns is the select list scanned by ScanBroker.
const BrokerColumns = `id, name, email, specialty_region, is_default, created_at`

// Repository provides access to the broker directory.
type Repository interface {
	List(ctx context.Context) ([]domain.Broker, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Broker, error)
	// SeedIfEmpty inserts seeds only when the directory has no brokers and
	// returns how many rows were written.
	SeedIfEmpty(ctx context.Context, seeds []domain.Seed) (int, error)
}

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new broker repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ScanBroker scans a row selected with BrokerColumns.
func ScanBroker(row pgx.Row) (domain.Broker, error) {
	var b domain.Broker
	err := row.Scan(&b.ID, &b.Name, &b.Email, &b.SpecialtyRegion, &b.IsDefault, &b.CreatedAt)
	return b, err
}

// List returns brokers in insertion order.
func (r *Repo) List(ctx context.Context) ([]domain.Broker, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+BrokerColumns+` FROM brokers ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list brokers: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Broker, 0)
	for rows.Next() {
		b, err := ScanBroker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan broker: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list brokers: %w", err)
	}
	return items, nil
}

// GetByID loads a broker.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Broker, error) {
	b, err := ScanBroker(r.pool.QueryRow(ctx, `SELECT `+BrokerColumns+` FROM brokers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Broker{}, apperr.NotFound(brokerNotFoundMessage)
	}
	if err != nil {
		return domain.Broker{}, fmt.Errorf("get broker: %w", err)
	}
	return b, nil
}

// SeedIfEmpty takes a transaction-scoped advisory lock so two API replicas
// starting together seed the directory once.
func (r *Repo) SeedIfEmpty(ctx context.Context, seeds []domain.Seed) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('brokers_seed'))`); err != nil {
		return 0, fmt.Errorf("lock broker seed: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM brokers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count brokers: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for _, seed := range seeds {
		var region *string
		if trimmed := strings.TrimSpace(seed.SpecialtyRegion); trimmed != "" {
			region = &trimmed
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO brokers (name, email, specialty_region, is_default)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO NOTHING`,
			strings.TrimSpace(seed.Name), strings.ToLower(strings.TrimSpace(seed.Email)), region, seed.IsDefault)
		if err != nil {
			return 0, fmt.Errorf("insert broker %s: %w", seed.Email, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit broker seed: %w", err)
	}
	return inserted, nil
}
