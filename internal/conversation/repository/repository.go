package repository

import (
	"context"
	"fmt"

	"sdr_backend/internal/conversation/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores the append-only conversation log.
type Repository interface {
	Append(ctx context.Context, leadID uuid.UUID, role, content string) (domain.Message, error)
	// Recent returns up to limit messages, newest first.
	Recent(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Message, error)
}

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func (r *Repo) Append(ctx context.Context, leadID uuid.UUID, role, content string) (domain.Message, error) {
	var m domain.Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversation_messages (lead_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, role, content, created_at`,
		leadID, role, content,
	).Scan(&m.ID, &m.LeadID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	return m, nil
}

func (r *Repo) Recent(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, role, content, created_at
		FROM conversation_messages
		WHERE lead_id = $1
		ORDER BY seq DESC
		LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Message, 0, limit)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.LeadID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return items, nil
}
