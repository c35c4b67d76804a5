package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sdr_backend/internal/followups/domain"
	"sdr_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	followUpNotFoundMessage = "follow-up not found"
	leadNotFoundMessage     = "lead not found"
	alreadyScheduledMessage = "follow-ups already scheduled for lead"
	maxErrorLength          = 500
)

const followUpColumns = `f.id, f.lead_id, f.scheduled_for, f.status, f.message_template, f.position,
	f.attempts, f.last_error, f.sent_at, f.created_at, f.updated_at`

const (
	lockLeadQuery       = `SELECT id FROM leads WHERE id = $1 FOR UPDATE`
	countByLeadQuery    = `SELECT count(*) FROM followups WHERE lead_id = $1`
	insertFollowUpQuery = `
		INSERT INTO followups AS f (lead_id, scheduled_for, status, message_template, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + followUpColumns
	getByIDQuery    = `SELECT ` + followUpColumns + ` FROM followups f WHERE f.id = $1`
	listByLeadQuery = `
		SELECT ` + followUpColumns + `
		FROM followups f
		WHERE f.lead_id = $1
		ORDER BY f.scheduled_for ASC, f.position ASC, f.id ASC`
	listDueQuery = `
		SELECT ` + followUpColumns + `, l.contact
		FROM followups f
		JOIN leads l ON l.id = f.lead_id
		WHERE f.status = $1
			AND f.scheduled_for <= $2
			AND (f.scheduled_for, f.id) > ($3, $4)
		ORDER BY f.scheduled_for ASC, f.id ASC
		LIMIT $5`
	markSentQuery = `
		UPDATE followups
		SET status = $2, sent_at = $3, last_error = NULL, updated_at = now()
		WHERE id = $1 AND status = $4`
	recordFailureQuery = `
		UPDATE followups
		SET attempts = attempts + 1, last_error = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING attempts`
)

// Repo implements the follow-up repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new follow-up repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanFollowUp(row pgx.Row, extra ...any) (domain.FollowUp, error) {
	var f domain.FollowUp
	dest := []any{
		&f.ID, &f.LeadID, &f.ScheduledFor, &f.Status, &f.MessageTemplate, &f.Position,
		&f.Attempts, &f.LastError, &f.SentAt, &f.CreatedAt, &f.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return f, err
}

// CreateBatch locks the lead row so concurrent schedulers for the same lead
// serialize, then inserts every item in one transaction.
func (r *Repo) CreateBatch(ctx context.Context, leadID uuid.UUID, items []NewFollowUp) ([]domain.FollowUp, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, lockLeadQuery, leadID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMessage)
		}
		return nil, fmt.Errorf("lock lead: %w", err)
	}

	var existing int
	if err := tx.QueryRow(ctx, countByLeadQuery, leadID).Scan(&existing); err != nil {
		return nil, fmt.Errorf("count follow-ups: %w", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict(alreadyScheduledMessage)
	}

	created := make([]domain.FollowUp, 0, len(items))
	for _, item := range items {
		f, err := scanFollowUp(tx.QueryRow(ctx, insertFollowUpQuery,
			leadID, item.ScheduledFor, domain.StatusPending, item.MessageTemplate, item.Position))
		if err != nil {
			return nil, fmt.Errorf("insert follow-up %d: %w", item.Position, err)
		}
		created = append(created, f)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit follow-ups: %w", err)
	}
	return created, nil
}

// GetByID loads a follow-up.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.FollowUp, error) {
	f, err := scanFollowUp(r.pool.QueryRow(ctx, getByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FollowUp{}, apperr.NotFound(followUpNotFoundMessage)
	}
	if err != nil {
		return domain.FollowUp{}, fmt.Errorf("get follow-up: %w", err)
	}
	return f, nil
}

// ListByLead returns a lead's follow-ups in schedule order.
func (r *Repo) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUp, error) {
	rows, err := r.pool.Query(ctx, listByLeadQuery, leadID)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	defer rows.Close()

	items := make([]domain.FollowUp, 0, 4)
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan follow-up: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	return items, nil
}

// ListDue pages through due rows with a keyset cursor on (scheduled_for, id).
func (r *Repo) ListDue(ctx context.Context, now time.Time, after Cursor, limit int) ([]DueFollowUp, error) {
	rows, err := r.pool.Query(ctx, listDueQuery,
		domain.StatusPending, now, after.ScheduledFor, after.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	items := make([]DueFollowUp, 0, limit)
	for rows.Next() {
		var contact string
		f, err := scanFollowUp(rows, &contact)
		if err != nil {
			return nil, fmt.Errorf("scan due follow-up: %w", err)
		}
		items = append(items, DueFollowUp{FollowUp: f, Contact: contact})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	return items, nil
}

// MarkSent moves a pending follow-up to sent.
func (r *Repo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, markSentQuery,
		id, domain.StatusSent, sentAt, domain.StatusPending)
	if err != nil {
		return false, fmt.Errorf("mark follow-up sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordFailure stores the last delivery error on a pending follow-up.
func (r *Repo) RecordFailure(ctx context.Context, id uuid.UUID, message string) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx, recordFailureQuery,
		id, truncateError(message), domain.StatusPending).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("record follow-up failure: %w", err)
	}
	return attempts, nil
}

// truncateError caps message at maxErrorLength bytes without splitting a rune.
// Invalid sequences are replaced so the column always receives valid UTF-8.
func truncateError(message string) string {
	message = strings.ToValidUTF8(message, "?")
	if len(message) <= maxErrorLength {
		return message
	}
	cut := maxErrorLength
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}
