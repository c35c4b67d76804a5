package scheduler

import (
	"context"
	"fmt"
	"time"

	"sdr_backend/platform/config"
	"sdr_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes follow-up tick tasks from Redis.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor Processor
	log       *logger.Logger
	now       func() time.Time
}

// NewWorker creates the asynq server that runs sweep tasks against processor.
func NewWorker(cfg config.SchedulerConfig, processor Processor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	return newWorker(server, processor, log), nil
}

func newWorker(server *asynq.Server, processor Processor, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Discard()
	}
	w := &Worker{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		log:       log,
		now:       time.Now,
	}
	w.mux.HandleFunc(TaskProcessDueFollowUps, w.handleProcessDue)
	return w
}

// Run serves tasks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start asynq worker: %w", err)
	}

	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleProcessDue(ctx context.Context, task *asynq.Task) error {
	if _, err := ParseProcessDuePayload(task); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	result, err := w.processor.ProcessPendingFollowups(ctx, w.now())
	if err != nil {
		w.log.Warn("follow-up tick task failed", "error", err)
		return err
	}
	if result.Overlapped {
		w.log.Info("follow-up tick task overlapped a running tick")
	}
	return nil
}
