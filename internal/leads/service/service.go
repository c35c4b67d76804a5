package service

import (
	"context"
	"fmt"
	"strings"

	"sdr_backend/internal/leads/domain"
	"sdr_backend/internal/leads/ports"
	"sdr_backend/internal/leads/repository"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/phone"
	"sdr_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	maxTextFieldLength = 200
	maxCountValue      = 100
	maxAreaValue       = 100000
)

// CreateResult is returned by CreateLead.
type CreateResult struct {
	Lead    domain.Lead
	Created bool
}

// Service provides lead lifecycle operations.
type Service struct {
	repo    repository.Repository
	cadence ports.CadenceScheduler
	phone   *phone.Normalizer
	log     *logger.Logger
}

// New creates a lead service. cadence may be nil, in which case new leads get no follow-ups.
func New(repo repository.Repository, cadence ports.CadenceScheduler, normalizer *phone.Normalizer, log *logger.Logger) *Service {
	if normalizer == nil {
		normalizer = phone.NewNormalizer(phone.DefaultRegion)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, cadence: cadence, phone: normalizer, log: log}
}

// SetCadenceScheduler wires the follow-up scheduler after construction.
func (s *Service) SetCadenceScheduler(cadence ports.CadenceScheduler) {
	s.cadence = cadence
}

// NormalizeContact returns the stored form of a contact identifier.
func (s *Service) NormalizeContact(raw string) (string, error) {
	contact := s.phone.NormalizeE164(sanitize.Text(raw))
	if contact == "" {
		return "", apperr.Validation("contact is required")
	}
	if len(contact) > 64 {
		return "", apperr.Validation("contact is too long")
	}
	return contact, nil
}

// CreateLead returns the lead for contact, creating it when absent. Every
// call makes sure a lead that is not handed off has its follow-up cadence, so
// a cadence write that failed after the insert is repaired by the next call.
// The cadence is written at most once per lead.
func (s *Service) CreateLead(ctx context.Context, rawContact string) (CreateResult, error) {
	contact, err := s.NormalizeContact(rawContact)
	if err != nil {
		return CreateResult{}, err
	}

	lead, created, err := s.repo.Create(ctx, contact)
	if err != nil {
		return CreateResult{}, storageErr("create lead", err)
	}

	if s.cadence != nil && lead.Status != domain.StatusHandoffCompleted {
		scheduled, err := s.cadence.EnsureInitialFollowups(ctx, lead.ID)
		if err != nil {
			s.log.Error("failed to schedule initial follow-ups", "leadId", lead.ID, "error", err)
			return CreateResult{Lead: lead, Created: created}, err
		}
		if scheduled && !created {
			s.log.Warn("initial follow-ups scheduled for existing lead", "leadId", lead.ID)
		}
	}

	return CreateResult{Lead: lead, Created: created}, nil
}

// GetLead loads a lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, storageErr("get lead", err)
	}
	return lead, nil
}

// GetLeadByContact loads a lead by contact, normalizing the identifier first.
func (s *Service) GetLeadByContact(ctx context.Context, rawContact string) (domain.Lead, error) {
	contact, err := s.NormalizeContact(rawContact)
	if err != nil {
		return domain.Lead{}, err
	}
	lead, err := s.repo.GetByContact(ctx, contact)
	if err != nil {
		return domain.Lead{}, storageErr("get lead", err)
	}
	return lead, nil
}

// UpdateLead applies a partial update. Absent fields are untouched, cleared
// fields become null. The handoff status can only be reached through a
// handoff, and a handed-off lead keeps its status.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, update domain.LeadUpdate) (domain.Lead, error) {
	update, err := normalizeUpdate(update)
	if err != nil {
		return domain.Lead{}, err
	}

	if update.Status.Set {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.Lead{}, storageErr("get lead", err)
		}
		if current.IsHandedOff() {
			return domain.Lead{}, apperr.Conflict("lead already handed off")
		}
	}

	lead, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return domain.Lead{}, storageErr("update lead", err)
	}
	s.log.WithContext(ctx).Info("lead updated", "leadId", lead.ID, "status", lead.Status)
	return lead, nil
}

func normalizeUpdate(u domain.LeadUpdate) (domain.LeadUpdate, error) {
	if u.Status.Set {
		if u.Status.Null {
			return u, apperr.Validation("status cannot be cleared")
		}
		u.Status.Value = strings.ToLower(strings.TrimSpace(u.Status.Value))
		if u.Status.Value == domain.StatusHandoffCompleted {
			return u, apperr.Validation("status handoff_completed is set by handoff only")
		}
		if !domain.IsValidStatus(u.Status.Value) {
			return u, apperr.Validation("invalid status")
		}
	}

	for name, p := range map[string]*domain.Patch[string]{
		"location":         &u.Location,
		"property_type":    &u.PropertyType,
		"investment_range": &u.InvestmentRange,
		"move_in_deadline": &u.MoveInDeadline,
		"payment_method":   &u.PaymentMethod,
		"intent_level":     &u.IntentLevel,
	} {
		if err := normalizeText(name, p); err != nil {
			return u, err
		}
	}

	if err := checkRange("bedrooms", u.Bedrooms, maxCountValue); err != nil {
		return u, err
	}
	if err := checkRange("parking_spots", u.ParkingSpots, maxCountValue); err != nil {
		return u, err
	}
	if err := checkRange("min_area_sqm", u.MinAreaSqm, maxAreaValue); err != nil {
		return u, err
	}
	return u, nil
}

// normalizeText trims a text patch; a blank value is treated as a clear.
func normalizeText(name string, p *domain.Patch[string]) error {
	if !p.Set || p.Null {
		return nil
	}
	p.Value = sanitize.Text(p.Value)
	if p.Value == "" {
		*p = domain.Clear[string]()
		return nil
	}
	if len([]rune(p.Value)) > maxTextFieldLength {
		return apperr.Validation(fmt.Sprintf("%s is too long", name))
	}
	return nil
}

func checkRange(name string, p domain.Patch[int], max int) error {
	if !p.Set || p.Null {
		return nil
	}
	if p.Value < 0 || p.Value > max {
		return apperr.Validation(fmt.Sprintf("%s must be between 0 and %d", name, max))
	}
	return nil
}

// storageErr keeps typed errors and marks everything else as a storage failure.
func storageErr(op string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Internal(op+" failed", err).WithOp(op)
}
