// Package service performs lead handoffs to brokers.
package service

import (
	"context"
	"time"

	brokersdomain "sdr_backend/internal/brokers/domain"
	"sdr_backend/internal/events"
	"sdr_backend/internal/handoff/domain"
	"sdr_backend/internal/handoff/repository"
	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/logger"

	"github.com/google/uuid"
)

// Result is the outcome of a committed handoff.
type Result struct {
	Lead               leadsdomain.Lead
	Broker             brokersdomain.Broker
	Summary            string
	CancelledFollowUps int
}

// Service orchestrates broker selection and lead finalization.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the handoff timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a handoff service. bus may be nil.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{repo: repo, bus: bus, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PerformHandoff assigns a broker, finalizes the lead and cancels its pending
// follow-ups in one transaction. A lead that was already handed off is
// rejected with a conflict.
func (s *Service) PerformHandoff(ctx context.Context, leadID uuid.UUID) (Result, error) {
	var res Result
	at := s.now().UTC()

	err := s.repo.WithTx(ctx, func(tx repository.Tx) error {
		lead, err := tx.LockLead(ctx, leadID)
		if err != nil {
			return err
		}
		if lead.IsHandedOff() {
			return apperr.Conflict("lead already handed off")
		}

		broker, err := selectBroker(ctx, tx, lead.Location)
		if err != nil {
			return err
		}

		updated, err := tx.AssignBroker(ctx, lead.ID, broker.ID, at)
		if err != nil {
			return err
		}
		cancelled, err := tx.CancelPendingFollowUps(ctx, lead.ID)
		if err != nil {
			return err
		}

		res = Result{Lead: updated, Broker: broker, CancelledFollowUps: cancelled}
		return nil
	})
	if err != nil {
		return Result{}, storageErr("perform handoff", err)
	}

	res.Summary = domain.BuildSummary(res.Lead, res.Broker, at)
	s.log.WithContext(ctx).HandoffCompleted(res.Lead.ID.String(), res.Broker.ID.String(), res.Broker.Email, int64(res.CancelledFollowUps))

	if s.bus != nil {
		s.bus.Publish(ctx, events.HandoffCompleted{
			BaseEvent:          events.NewBaseEvent(),
			LeadID:             res.Lead.ID,
			Contact:            res.Lead.Contact,
			BrokerID:           res.Broker.ID,
			BrokerName:         res.Broker.Name,
			BrokerEmail:        res.Broker.Email,
			Summary:            res.Summary,
			CancelledFollowUps: res.CancelledFollowUps,
			HandoffAt:          at,
		})
	}
	return res, nil
}

// selectBroker prefers an exact region match, then the default broker, then
// the oldest broker in the directory.
func selectBroker(ctx context.Context, tx repository.Tx, location *string) (brokersdomain.Broker, error) {
	if location != nil && *location != "" {
		b, ok, err := tx.BrokerByRegion(ctx, *location)
		if err != nil || ok {
			return b, err
		}
	}
	if b, ok, err := tx.DefaultBroker(ctx); err != nil || ok {
		return b, err
	}
	if b, ok, err := tx.FirstBroker(ctx); err != nil || ok {
		return b, err
	}
	return brokersdomain.Broker{}, apperr.Wrap(apperr.KindNotFound, "no broker available", domain.ErrNoBrokerAvailable)
}

// storageErr keeps typed errors and marks everything else as a storage failure.
func storageErr(op string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Internal(op+" failed", err).WithOp(op)
}
