package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sdr_backend/internal/leads/domain"
	"sdr_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	leadNotFoundMessage = "lead not found"
	handedOffMessage    = "lead already handed off"
)

// LeadColumns is the select list scanned by ScanLead.
const LeadColumns = `id, contact, location, property_type, bedrooms, parking_spots, min_area_sqm,
	investment_range, move_in_deadline, payment_method, status, intent_level, broker_id, handoff_at,
	created_at, updated_at`

// Repo implements the lead repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ScanLead scans a row selected with LeadColumns.
func ScanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID, &lead.Contact, &lead.Location, &lead.PropertyType, &lead.Bedrooms, &lead.ParkingSpots, &lead.MinAreaSqm,
		&lead.InvestmentRange, &lead.MoveInDeadline, &lead.PaymentMethod, &lead.Status, &lead.IntentLevel,
		&lead.BrokerID, &lead.HandoffAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

// Create inserts a lead. A concurrent or repeated insert for the same
// contact resolves to the stored row.
func (r *Repo) Create(ctx context.Context, contact string) (domain.Lead, bool, error) {
	lead, err := ScanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (contact, status)
		VALUES ($1, $2)
		ON CONFLICT (contact) DO NOTHING
		RETURNING `+LeadColumns, contact, domain.StatusNew))
	if err == nil {
		return lead, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, false, fmt.Errorf("create lead: %w", err)
	}

	existing, err := r.GetByContact(ctx, contact)
	if err != nil {
		return domain.Lead{}, false, err
	}
	return existing, false, nil
}

// GetByID loads a lead by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := ScanLead(r.pool.QueryRow(ctx, `SELECT `+LeadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// GetByContact loads a lead by its normalized contact.
func (r *Repo) GetByContact(ctx context.Context, contact string) (domain.Lead, error) {
	lead, err := ScanLead(r.pool.QueryRow(ctx, `SELECT `+LeadColumns+` FROM leads WHERE contact = $1`, contact))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead by contact: %w", err)
	}
	return lead, nil
}

// Update applies a partial update in a single statement. Provided fields are
// written (null for a clear), absent fields keep their stored value. When
// fields change on a lead still in status new it moves to qualifying unless
// the update sets a status itself. A status change on a handed-off lead
// matches no row and is reported as a conflict.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, update domain.LeadUpdate) (domain.Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{update.Location.Set, "location", update.Location.Ptr()},
		{update.PropertyType.Set, "property_type", update.PropertyType.Ptr()},
		{update.Bedrooms.Set, "bedrooms", update.Bedrooms.Ptr()},
		{update.ParkingSpots.Set, "parking_spots", update.ParkingSpots.Ptr()},
		{update.MinAreaSqm.Set, "min_area_sqm", update.MinAreaSqm.Ptr()},
		{update.InvestmentRange.Set, "investment_range", update.InvestmentRange.Ptr()},
		{update.MoveInDeadline.Set, "move_in_deadline", update.MoveInDeadline.Ptr()},
		{update.PaymentMethod.Set, "payment_method", update.PaymentMethod.Ptr()},
		{update.IntentLevel.Set, "intent_level", update.IntentLevel.Ptr()},
		{update.Status.Set && !update.Status.Null, "status", update.Status.Value},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	if update.HasFields() && !update.Status.Set {
		setClauses = append(setClauses, fmt.Sprintf("status = CASE WHEN status = '%s' THEN '%s' ELSE status END",
			domain.StatusNew, domain.StatusQualifying))
	}
	setClauses = append(setClauses, "updated_at = now()")

	where := fmt.Sprintf("id = $%d", argIdx)
	args = append(args, id)
	if update.Status.Set {
		where += fmt.Sprintf(" AND status <> '%s'", domain.StatusHandoffCompleted)
	}

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE %s RETURNING %s`,
		strings.Join(setClauses, ", "), where, LeadColumns)

	lead, err := ScanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return domain.Lead{}, getErr
		}
		return domain.Lead{}, apperr.Conflict(handedOffMessage)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}
