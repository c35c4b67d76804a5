package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	followupsservice "sdr_backend/internal/followups/service"
	"sdr_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type fakeProcessor struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (p *fakeProcessor) ProcessPendingFollowups(_ context.Context, now time.Time) (followupsservice.ProcessResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return followupsservice.ProcessResult{}, p.err
}

func (p *fakeProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestTickerRunsImmediatelyAndOnInterval(t *testing.T) {
	proc := &fakeProcessor{}
	ticker := NewTicker(proc, 5*time.Millisecond, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 3 ticks, got %d", proc.count())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop after cancel")
	}
}

func TestTickerKeepsRunningAfterFailure(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("db down")}
	ticker := NewTicker(proc, 2*time.Millisecond, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ticker.Run(ctx)

	if proc.count() < 2 {
		t.Fatalf("expected ticks to continue after a failure, got %d", proc.count())
	}
}

func TestNewTickerDefaultsInterval(t *testing.T) {
	if got := NewTicker(&fakeProcessor{}, 0, nil).interval; got != time.Minute {
		t.Fatalf("expected default interval of one minute, got %s", got)
	}
}

func TestWorkerHandlerRunsTick(t *testing.T) {
	proc := &fakeProcessor{}
	w := newWorker(nil, proc, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	task, err := NewProcessDueTask(ProcessDuePayload{ScheduledAt: fixed})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process task: %v", err)
	}
	if proc.count() != 1 || !proc.calls[0].Equal(fixed) {
		t.Fatalf("expected one tick at %s, got %v", fixed, proc.calls)
	}
}

func TestWorkerHandlerReturnsProcessorError(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("db down")}
	w := newWorker(nil, proc, nil)

	task, _ := NewProcessDueTask(ProcessDuePayload{})
	if err := w.handleProcessDue(context.Background(), task); err == nil {
		t.Fatal("expected processor error to be returned for asynq retry accounting")
	}
}

func TestWorkerHandlerSkipsRetryOnBadPayload(t *testing.T) {
	w := newWorker(nil, &fakeProcessor{}, nil)

	err := w.handleProcessDue(context.Background(), asynq.NewTask(TaskProcessDueFollowUps, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 || opt.TLSConfig != nil {
		t.Fatalf("unexpected opts %+v", opt)
	}

	tlsOpt, err := redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("parse tls: %v", err)
	}
	if tlsOpt.TLSConfig == nil || !tlsOpt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config for rediss url")
	}

	if _, err := redisClientOpt("://bad", false); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
