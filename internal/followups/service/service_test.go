package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"sdr_backend/internal/followups/domain"
	"sdr_backend/internal/followups/repository"
	"sdr_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*domain.FollowUp
	contacts map[uuid.UUID]string
	failNext error
	// beforeMark runs inside MarkSent before the status check, simulating a concurrent writer.
	beforeMark func(id uuid.UUID)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]*domain.FollowUp{}, contacts: map[uuid.UUID]string{}}
}

func (f *fakeRepo) CreateBatch(_ context.Context, leadID uuid.UUID, items []repository.NewFollowUp) ([]domain.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	for _, row := range f.rows {
		if row.LeadID == leadID {
			return nil, apperr.Conflict("follow-ups already scheduled for lead")
		}
	}
	out := make([]domain.FollowUp, 0, len(items))
	for _, item := range items {
		row := &domain.FollowUp{
			ID:              uuid.New(),
			LeadID:          leadID,
			ScheduledFor:    item.ScheduledFor,
			Status:          domain.StatusPending,
			MessageTemplate: item.MessageTemplate,
			Position:        item.Position,
		}
		f.rows[row.ID] = row
		out = append(out, *row)
	}
	if _, ok := f.contacts[leadID]; !ok {
		f.contacts[leadID] = "+55" + leadID.String()[:8]
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return domain.FollowUp{}, apperr.NotFound("follow-up not found")
	}
	return *row, nil
}

func (f *fakeRepo) ListByLead(_ context.Context, leadID uuid.UUID) ([]domain.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.FollowUp{}
	for _, row := range f.rows {
		if row.LeadID == leadID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.Before(out[j].ScheduledFor)
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f *fakeRepo) ListDue(_ context.Context, now time.Time, after repository.Cursor, limit int) ([]repository.DueFollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := []repository.DueFollowUp{}
	for _, row := range f.rows {
		if row.Status != domain.StatusPending || row.ScheduledFor.After(now) {
			continue
		}
		due = append(due, repository.DueFollowUp{FollowUp: *row, Contact: f.contacts[row.LeadID]})
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ScheduledFor.Equal(due[j].ScheduledFor) {
			return due[i].ScheduledFor.Before(due[j].ScheduledFor)
		}
		return due[i].ID.String() < due[j].ID.String()
	})
	out := []repository.DueFollowUp{}
	for _, d := range due {
		if d.ScheduledFor.Before(after.ScheduledFor) ||
			(d.ScheduledFor.Equal(after.ScheduledFor) && d.ID.String() <= after.ID.String()) {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	if f.beforeMark != nil {
		f.beforeMark(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || !domain.CanTransition(row.Status, domain.StatusSent) {
		return false, nil
	}
	row.Status = domain.StatusSent
	row.SentAt = &sentAt
	return true, nil
}

func (f *fakeRepo) RecordFailure(_ context.Context, id uuid.UUID, message string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != domain.StatusPending {
		return 0, nil
	}
	row.Attempts++
	row.LastError = &message
	return row.Attempts, nil
}

func (f *fakeRepo) cancel(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row := f.rows[id]; row != nil && row.Status == domain.StatusPending {
		row.Status = domain.StatusCancelled
	}
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
	block   chan struct{}
	started chan struct{}
}

func (s *fakeSender) Send(_ context.Context, contact, message string) error {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[message]; err != nil {
		return err
	}
	s.sent = append(s.sent, contact+"|"+message)
	return nil
}

var baseTime = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo, sender Sender, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return baseTime })}, opts...)
	return New(repo, sender, nil, opts...)
}

func TestScheduleInitialFollowupsCreatesCadence(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSender{})
	leadID := uuid.New()

	if err := svc.ScheduleInitialFollowups(context.Background(), leadID); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	items, err := svc.GetFollowupsByLead(context.Background(), leadID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d follow-ups, want 4", len(items))
	}
	wantDays := []int{1, 3, 7, 14}
	for i, f := range items {
		if f.Status != domain.StatusPending {
			t.Fatalf("follow-up %d status = %q", i, f.Status)
		}
		if got := f.ScheduledFor.Sub(baseTime); got != time.Duration(wantDays[i])*24*time.Hour {
			t.Fatalf("follow-up %d offset = %v, want %d days", i, got, wantDays[i])
		}
		if f.MessageTemplate != domain.DefaultCadence[i].Message {
			t.Fatalf("follow-up %d message mismatch", i)
		}
	}
}

func TestScheduleInitialFollowupsTwiceConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSender{})
	leadID := uuid.New()

	_ = svc.ScheduleInitialFollowups(context.Background(), leadID)
	err := svc.ScheduleInitialFollowups(context.Background(), leadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	items, _ := svc.GetFollowupsByLead(context.Background(), leadID)
	if len(items) != 4 {
		t.Fatalf("got %d follow-ups after repeat, want 4", len(items))
	}
}

func TestScheduleInitialFollowupsStorageFailureWritesNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = errors.New("commit failed")
	svc := newTestService(repo, &fakeSender{})
	leadID := uuid.New()

	err := svc.ScheduleInitialFollowups(context.Background(), leadID)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
	items, _ := svc.GetFollowupsByLead(context.Background(), leadID)
	if len(items) != 0 {
		t.Fatalf("partial cadence written: %d rows", len(items))
	}
}

func TestEnsureInitialFollowupsAfterFailedWrite(t *testing.T) {
	repo := newFakeRepo()
	repo.failNext = errors.New("db blip")
	svc := newTestService(repo, &fakeSender{})
	leadID := uuid.New()

	if _, err := svc.EnsureInitialFollowups(context.Background(), leadID); err == nil {
		t.Fatal("expected the failed write to surface")
	}

	scheduled, err := svc.EnsureInitialFollowups(context.Background(), leadID)
	if err != nil || !scheduled {
		t.Fatalf("retry: scheduled=%v err=%v, want scheduled", scheduled, err)
	}
	scheduled, err = svc.EnsureInitialFollowups(context.Background(), leadID)
	if err != nil || scheduled {
		t.Fatalf("third call: scheduled=%v err=%v, want no-op", scheduled, err)
	}

	items, _ := svc.GetFollowupsByLead(context.Background(), leadID)
	if len(items) != 4 {
		t.Fatalf("got %d follow-ups, want exactly one cadence of 4", len(items))
	}
}

func TestProcessPendingBeforeAnyDueTouchesNothing(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := newTestService(repo, sender)
	leadID := uuid.New()
	_ = svc.ScheduleInitialFollowups(context.Background(), leadID)

	result, err := svc.ProcessPendingFollowups(context.Background(), baseTime.Add(23*time.Hour))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Due != 0 || len(sender.sent) != 0 {
		t.Fatalf("result = %+v, sent = %d", result, len(sender.sent))
	}
}

func TestProcessPendingAfterAllOffsetsSendsAll(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := newTestService(repo, sender, WithBatchSize(3))
	leadID := uuid.New()
	_ = svc.ScheduleInitialFollowups(context.Background(), leadID)

	result, err := svc.ProcessPendingFollowups(context.Background(), baseTime.Add(15*24*time.Hour))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Sent != 4 || result.Due != 4 {
		t.Fatalf("result = %+v, want 4 sent", result)
	}

	items, _ := svc.GetFollowupsByLead(context.Background(), leadID)
	for _, f := range items {
		if f.Status != domain.StatusSent || f.SentAt == nil {
			t.Fatalf("follow-up %d not sent: %+v", f.Position, f)
		}
	}

	again, _ := svc.ProcessPendingFollowups(context.Background(), baseTime.Add(15*24*time.Hour))
	if again.Due != 0 || len(sender.sent) != 4 {
		t.Fatalf("second tick result = %+v, sends = %d", again, len(sender.sent))
	}
}

func TestProcessPendingFailureStaysPending(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{failFor: map[string]error{
		domain.DefaultCadence[0].Message: errors.New("gateway unavailable"),
	}}
	svc := newTestService(repo, sender)
	leadID := uuid.New()
	_ = svc.ScheduleInitialFollowups(context.Background(), leadID)

	result, err := svc.ProcessPendingFollowups(context.Background(), baseTime.Add(4*24*time.Hour))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Failed != 1 || result.Sent != 1 {
		t.Fatalf("result = %+v, want 1 failed and 1 sent", result)
	}

	items, _ := svc.GetFollowupsByLead(context.Background(), leadID)
	if items[0].Status != domain.StatusPending || items[0].Attempts != 1 || items[0].LastError == nil {
		t.Fatalf("failed follow-up = %+v", items[0])
	}
	if items[1].Status != domain.StatusSent {
		t.Fatalf("independent follow-up not sent: %+v", items[1])
	}

	delete(sender.failFor, domain.DefaultCadence[0].Message)
	retry, _ := svc.ProcessPendingFollowups(context.Background(), baseTime.Add(4*24*time.Hour))
	if retry.Sent != 1 {
		t.Fatalf("retry result = %+v, want 1 sent", retry)
	}
}

func TestProcessPendingSkipsRowCancelledMidDelivery(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeSender{})
	leadID := uuid.New()
	_ = svc.ScheduleInitialFollowups(context.Background(), leadID)
	repo.beforeMark = repo.cancel

	result, err := svc.ProcessPendingFollowups(context.Background(), baseTime.Add(2*24*time.Hour))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Skipped != 1 || result.Sent != 0 {
		t.Fatalf("result = %+v", result)
	}
	items, _ := svc.GetFollowupsByLead(context.Background(), leadID)
	if items[0].Status != domain.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", items[0].Status)
	}
}

func TestProcessPendingOverlapIsSkipped(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{block: make(chan struct{}), started: make(chan struct{}, 4)}
	svc := newTestService(repo, sender)
	_ = svc.ScheduleInitialFollowups(context.Background(), uuid.New())
	now := baseTime.Add(2 * 24 * time.Hour)

	done := make(chan ProcessResult)
	go func() {
		r, _ := svc.ProcessPendingFollowups(context.Background(), now)
		done <- r
	}()
	<-sender.started

	overlap, err := svc.ProcessPendingFollowups(context.Background(), now)
	if err != nil || !overlap.Overlapped {
		t.Fatalf("overlap result = %+v, %v", overlap, err)
	}

	close(sender.block)
	first := <-done
	if first.Sent != 1 {
		t.Fatalf("first tick result = %+v", first)
	}
}
