package scheduler

import (
	"context"
	"time"

	followupsservice "sdr_backend/internal/followups/service"
	"sdr_backend/platform/logger"
)

const defaultPollInterval = time.Minute

// Processor runs one scan of due follow-ups.
type Processor interface {
	ProcessPendingFollowups(ctx context.Context, now time.Time) (followupsservice.ProcessResult, error)
}

// Ticker drives the follow-up scan in-process on a fixed interval.
type Ticker struct {
	processor Processor
	log       *logger.Logger
	interval  time.Duration
	now       func() time.Time
}

// NewTicker creates an in-process sweep loop. A non-positive interval falls back to one minute.
func NewTicker(processor Processor, interval time.Duration, log *logger.Logger) *Ticker {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Ticker{
		processor: processor,
		log:       log,
		interval:  interval,
		now:       time.Now,
	}
}

// Run ticks once immediately, then every interval until ctx is done.
func (t *Ticker) Run(ctx context.Context) {
	if t == nil || t.processor == nil {
		return
	}

	t.log.Info("follow-up ticker started", "interval", t.interval.String())
	t.tick(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("follow-up ticker stopped")
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	if _, err := t.processor.ProcessPendingFollowups(ctx, t.now()); err != nil && ctx.Err() == nil {
		t.log.Warn("follow-up tick failed", "error", err)
	}
}
