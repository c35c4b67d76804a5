package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	brokersdomain "sdr_backend/internal/brokers/domain"
	"sdr_backend/internal/events"
	"sdr_backend/internal/handoff/domain"
	"sdr_backend/internal/handoff/repository"
	leadsdomain "sdr_backend/internal/leads/domain"
	"sdr_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeFollowUp struct {
	leadID uuid.UUID
	status string
}

type state struct {
	leads     map[uuid.UUID]leadsdomain.Lead
	brokers   []brokersdomain.Broker
	followUps []fakeFollowUp
}

func (s state) clone() state {
	out := state{leads: make(map[uuid.UUID]leadsdomain.Lead, len(s.leads))}
	for k, v := range s.leads {
		out.leads[k] = v
	}
	out.brokers = append(out.brokers, s.brokers...)
	out.followUps = append(out.followUps, s.followUps...)
	return out
}

// fakeRepo applies a transaction's writes only when fn succeeds.
type fakeRepo struct {
	mu         sync.Mutex
	committed  state
	failCancel error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{committed: state{leads: map[uuid.UUID]leadsdomain.Lead{}}}
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	work := r.committed.clone()
	if err := fn(&fakeTx{st: &work, failCancel: r.failCancel}); err != nil {
		return err
	}
	r.committed = work
	return nil
}

type fakeTx struct {
	st         *state
	failCancel error
}

func (t *fakeTx) LockLead(_ context.Context, id uuid.UUID) (leadsdomain.Lead, error) {
	lead, ok := t.st.leads[id]
	if !ok {
		return leadsdomain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (t *fakeTx) find(match func(brokersdomain.Broker) bool) (brokersdomain.Broker, bool, error) {
	for _, b := range t.st.brokers {
		if match(b) {
			return b, true, nil
		}
	}
	return brokersdomain.Broker{}, false, nil
}

func (t *fakeTx) BrokerByRegion(_ context.Context, region string) (brokersdomain.Broker, bool, error) {
	return t.find(func(b brokersdomain.Broker) bool { return b.SpecialtyRegion != nil && *b.SpecialtyRegion == region })
}

func (t *fakeTx) DefaultBroker(context.Context) (brokersdomain.Broker, bool, error) {
	return t.find(func(b brokersdomain.Broker) bool { return b.IsDefault })
}

func (t *fakeTx) FirstBroker(context.Context) (brokersdomain.Broker, bool, error) {
	return t.find(func(brokersdomain.Broker) bool { return true })
}

func (t *fakeTx) AssignBroker(_ context.Context, leadID, brokerID uuid.UUID, at time.Time) (leadsdomain.Lead, error) {
	lead := t.st.leads[leadID]
	lead.BrokerID = &brokerID
	lead.Status = leadsdomain.StatusHandoffCompleted
	lead.HandoffAt = &at
	t.st.leads[leadID] = lead
	return lead, nil
}

func (t *fakeTx) CancelPendingFollowUps(_ context.Context, leadID uuid.UUID) (int, error) {
	if t.failCancel != nil {
		return 0, t.failCancel
	}
	n := 0
	for i, f := range t.st.followUps {
		if f.leadID == leadID && f.status == "pending" {
			t.st.followUps[i].status = "cancelled"
			n++
		}
	}
	return n, nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func strPtr(s string) *string { return &s }

func broker(name, region string) brokersdomain.Broker {
	b := brokersdomain.Broker{ID: uuid.New(), Name: name, Email: name + "@example.com"}
	if region != "" {
		b.SpecialtyRegion = strPtr(region)
	}
	return b
}

func addLead(repo *fakeRepo, location string) leadsdomain.Lead {
	lead := leadsdomain.Lead{ID: uuid.New(), Contact: "+5547999887766", Status: leadsdomain.StatusQualifying}
	if location != "" {
		lead.Location = strPtr(location)
	}
	repo.committed.leads[lead.ID] = lead
	return lead
}

func counts(repo *fakeRepo, leadID uuid.UUID) map[string]int {
	out := map[string]int{}
	for _, f := range repo.committed.followUps {
		if f.leadID == leadID {
			out[f.status]++
		}
	}
	return out
}

func TestPerformHandoffCancelsOnlyPending(t *testing.T) {
	repo := newFakeRepo()
	repo.committed.brokers = []brokersdomain.Broker{broker("a", "A")}
	lead := addLead(repo, "A")
	other := addLead(repo, "A")
	repo.committed.followUps = []fakeFollowUp{
		{lead.ID, "pending"}, {lead.ID, "pending"}, {lead.ID, "sent"}, {other.ID, "pending"},
	}
	bus := &recordingBus{}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(repo, bus, nil, WithClock(func() time.Time { return now }))

	res, err := svc.PerformHandoff(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("PerformHandoff: %v", err)
	}

	if res.CancelledFollowUps != 2 {
		t.Fatalf("cancelled = %d, want 2", res.CancelledFollowUps)
	}
	got := counts(repo, lead.ID)
	if got["cancelled"] != 2 || got["sent"] != 1 || got["pending"] != 0 {
		t.Fatalf("follow-up statuses = %v", got)
	}
	if counts(repo, other.ID)["pending"] != 1 {
		t.Fatalf("other lead's follow-ups must be untouched")
	}
	stored := repo.committed.leads[lead.ID]
	if stored.Status != leadsdomain.StatusHandoffCompleted || stored.BrokerID == nil || stored.HandoffAt == nil {
		t.Fatalf("lead not finalized: %+v", stored)
	}
	if !stored.HandoffConsistent() {
		t.Fatalf("handoff fields inconsistent: %+v", stored)
	}
	if !stored.HandoffAt.Equal(now) {
		t.Fatalf("handoff_at = %v, want %v", stored.HandoffAt, now)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	evt, ok := bus.published[0].(events.HandoffCompleted)
	if !ok || evt.BrokerEmail != "a@example.com" || evt.Summary == "" {
		t.Fatalf("unexpected event %#v", bus.published[0])
	}
}

func TestPerformHandoffBrokerSelection(t *testing.T) {
	cases := []struct {
		name     string
		brokers  []brokersdomain.Broker
		location string
		want     string
	}{
		{"exact region", []brokersdomain.Broker{broker("b", "B"), broker("a", "A")}, "A", "a"},
		{"region is case sensitive", []brokersdomain.Broker{broker("first", "B"), broker("a", "A")}, "a", "first"},
		{"no match falls back to oldest", []brokersdomain.Broker{broker("first", "A"), broker("second", "B")}, "Z", "first"},
		{"no location falls back", []brokersdomain.Broker{broker("first", "A")}, "", "first"},
		{"default broker wins fallback", func() []brokersdomain.Broker {
			d := broker("default", "")
			d.IsDefault = true
			return []brokersdomain.Broker{broker("first", "A"), d}
		}(), "Z", "default"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.committed.brokers = tc.brokers
			lead := addLead(repo, tc.location)

			res, err := New(repo, nil, nil).PerformHandoff(context.Background(), lead.ID)
			if err != nil {
				t.Fatalf("PerformHandoff: %v", err)
			}
			if res.Broker.Name != tc.want {
				t.Fatalf("assigned %q, want %q", res.Broker.Name, tc.want)
			}
		})
	}
}

func TestPerformHandoffEmptyDirectory(t *testing.T) {
	repo := newFakeRepo()
	lead := addLead(repo, "A")
	repo.committed.followUps = []fakeFollowUp{{lead.ID, "pending"}}

	_, err := New(repo, nil, nil).PerformHandoff(context.Background(), lead.ID)
	if !errors.Is(err, domain.ErrNoBrokerAvailable) {
		t.Fatalf("expected ErrNoBrokerAvailable, got %v", err)
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found kind, got %v", apperr.GetKind(err))
	}
	if repo.committed.leads[lead.ID].IsHandedOff() || counts(repo, lead.ID)["pending"] != 1 {
		t.Fatalf("failed handoff must not change state")
	}
}

func TestPerformHandoffTwiceConflicts(t *testing.T) {
	repo := newFakeRepo()
	repo.committed.brokers = []brokersdomain.Broker{broker("a", "A")}
	lead := addLead(repo, "A")
	svc := New(repo, nil, nil)

	if _, err := svc.PerformHandoff(context.Background(), lead.ID); err != nil {
		t.Fatalf("first handoff: %v", err)
	}
	_, err := svc.PerformHandoff(context.Background(), lead.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPerformHandoffUnknownLead(t *testing.T) {
	repo := newFakeRepo()
	repo.committed.brokers = []brokersdomain.Broker{broker("a", "A")}

	_, err := New(repo, nil, nil).PerformHandoff(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPerformHandoffRollsBackOnStorageFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.committed.brokers = []brokersdomain.Broker{broker("a", "A")}
	lead := addLead(repo, "A")
	repo.committed.followUps = []fakeFollowUp{{lead.ID, "pending"}}
	repo.failCancel = errors.New("connection reset")
	bus := &recordingBus{}

	_, err := New(repo, bus, nil).PerformHandoff(context.Background(), lead.ID)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if repo.committed.leads[lead.ID].IsHandedOff() {
		t.Fatalf("lead must not be finalized when cancellation fails")
	}
	if counts(repo, lead.ID)["pending"] != 1 {
		t.Fatalf("follow-ups must stay pending")
	}
	if len(bus.published) != 0 {
		t.Fatalf("no event may be published for a rolled back handoff")
	}
}
