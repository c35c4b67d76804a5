// Package service schedules and delivers lead follow-ups.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sdr_backend/internal/followups/domain"
	"sdr_backend/internal/followups/repository"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultBatchSize   = 100
	defaultSendTimeout = 30 * time.Second
)

// Sender delivers a follow-up message to a lead contact.
type Sender interface {
	Send(ctx context.Context, contact, message string) error
}

// ProcessResult summarizes one scan of due follow-ups.
type ProcessResult struct {
	Due     int
	Sent    int
	Failed  int
	Skipped int
	// Overlapped is set when another tick was still running and this one did nothing.
	Overlapped bool
}

// Service owns the follow-up cadence and the periodic delivery scan.
type Service struct {
	repo        repository.Repository
	sender      Sender
	log         *logger.Logger
	cadence     []domain.CadenceStep
	batchSize   int
	sendTimeout time.Duration
	now         func() time.Time
	tick        sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithBatchSize sets how many due rows are read per page.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides the wall clock used for scheduling.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCadence replaces the default cadence table.
func WithCadence(steps []domain.CadenceStep) Option {
	return func(s *Service) { s.cadence = steps }
}

// WithSendTimeout bounds each delivery call.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// New creates a follow-up service.
func New(repo repository.Repository, sender Sender, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		repo:        repo,
		sender:      sender,
		log:         log,
		cadence:     domain.DefaultCadence,
		batchSize:   defaultBatchSize,
		sendTimeout: defaultSendTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleInitialFollowups writes the whole cadence for a lead relative to
// the current time. The batch is all-or-nothing, and a lead that already has
// follow-ups is rejected with a conflict.
func (s *Service) ScheduleInitialFollowups(ctx context.Context, leadID uuid.UUID) error {
	now := s.now().UTC()
	items := make([]repository.NewFollowUp, 0, len(s.cadence))
	for i, step := range s.cadence {
		items = append(items, repository.NewFollowUp{
			ScheduledFor:    step.ScheduledFor(now),
			MessageTemplate: step.Message,
			Position:        i + 1,
		})
	}

	if _, err := s.repo.CreateBatch(ctx, leadID, items); err != nil {
		return storageErr("schedule follow-ups", err)
	}
	s.log.Info("follow-up cadence scheduled", "leadId", leadID, "count", len(items))
	return nil
}

// EnsureInitialFollowups schedules the cadence for a lead that has no
// follow-ups and reports whether it did. A concurrent scheduler winning the
// race is treated as already scheduled.
func (s *Service) EnsureInitialFollowups(ctx context.Context, leadID uuid.UUID) (bool, error) {
	existing, err := s.repo.ListByLead(ctx, leadID)
	if err != nil {
		return false, storageErr("list follow-ups", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	if err := s.ScheduleInitialFollowups(ctx, leadID); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetFollowupsByLead returns a lead's follow-ups in schedule order.
func (s *Service) GetFollowupsByLead(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUp, error) {
	items, err := s.repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, storageErr("list follow-ups", err)
	}
	return items, nil
}

// GetFollowUp loads one follow-up.
func (s *Service) GetFollowUp(ctx context.Context, id uuid.UUID) (domain.FollowUp, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.FollowUp{}, storageErr("get follow-up", err)
	}
	return f, nil
}

// ProcessPendingFollowups delivers every follow-up that is pending and due at
// now. Each row is handled on its own: a failed send leaves the row pending
// with its attempt count raised so the next tick retries it. A row cancelled
// between the read and the status write is counted as skipped. Overlapping
// calls in the same process are not run concurrently; the late caller returns
// immediately with Overlapped set.
func (s *Service) ProcessPendingFollowups(ctx context.Context, now time.Time) (ProcessResult, error) {
	if !s.tick.TryLock() {
		s.log.Warn("follow-up tick skipped: previous tick still running")
		return ProcessResult{Overlapped: true}, nil
	}
	defer s.tick.Unlock()

	var (
		result ProcessResult
		cursor repository.Cursor
	)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.repo.ListDue(ctx, now, cursor, s.batchSize)
		if err != nil {
			return result, storageErr("list due follow-ups", err)
		}

		for _, item := range batch {
			result.Due++
			switch s.deliver(ctx, item) {
			case outcomeSent:
				result.Sent++
			case outcomeFailed:
				result.Failed++
			case outcomeSkipped:
				result.Skipped++
			}
		}

		if len(batch) < s.batchSize {
			break
		}
		last := batch[len(batch)-1]
		cursor = repository.Cursor{ScheduledFor: last.ScheduledFor, ID: last.ID}
	}

	if result.Due > 0 {
		s.log.Info("follow-up tick complete",
			"due", result.Due, "sent", result.Sent, "failed", result.Failed, "skipped", result.Skipped)
	}
	return result, nil
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (s *Service) deliver(ctx context.Context, item repository.DueFollowUp) outcome {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	sendErr := s.sender.Send(sendCtx, item.Contact, item.MessageTemplate)
	cancel()

	if sendErr != nil {
		attempts, err := s.repo.RecordFailure(ctx, item.ID, sendErr.Error())
		if err != nil {
			s.log.DatabaseError("record follow-up failure", err)
		}
		s.log.FollowUpFailed(item.ID.String(), item.LeadID.String(), attempts, sendErr)
		return outcomeFailed
	}

	ok, err := s.repo.MarkSent(ctx, item.ID, s.now().UTC())
	if err != nil {
		s.log.DatabaseError("mark follow-up sent", err)
		return outcomeFailed
	}
	if !ok {
		s.log.Warn("follow-up left pending state during delivery", "followupId", item.ID, "leadId", item.LeadID)
		return outcomeSkipped
	}

	s.log.FollowUpDispatched(item.ID.String(), item.LeadID.String(), item.Contact)
	return outcomeSent
}

// storageErr keeps typed errors and marks everything else as a storage failure.
func storageErr(op string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperr.Internal(fmt.Sprintf("%s failed", op), err).WithOp(op)
}
