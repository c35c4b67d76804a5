package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"sdr_backend/platform/config"
	"sdr_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Periodic registers the follow-up tick as a recurring asynq task. Each
// interval enqueues at most one task across all scheduler replicas.
type Periodic struct {
	scheduler *asynq.Scheduler
	queue     string
	interval  time.Duration
	log       *logger.Logger
}

// NewPeriodic builds the asynq scheduler that enqueues the due-follow-up sweep.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Periodic{
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC}),
		queue:     queueName(cfg),
		interval:  pollInterval(cfg),
		log:       log,
	}, nil
}

// Run registers the periodic entry and blocks until ctx is done.
func (p *Periodic) Run(ctx context.Context) error {
	if p == nil || p.scheduler == nil {
		return nil
	}

	task, err := NewProcessDueTask(ProcessDuePayload{})
	if err != nil {
		return err
	}

	spec := fmt.Sprintf("@every %s", p.interval)
	entryID, err := p.scheduler.Register(spec, task,
		asynq.Queue(p.queue),
		asynq.Unique(p.interval),
		asynq.MaxRetry(0),
		asynq.Timeout(p.interval),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", TaskProcessDueFollowUps, err)
	}

	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start asynq scheduler: %w", err)
	}
	p.log.Info("follow-up tick registered", "entry_id", entryID, "spec", spec, "queue", p.queue)

	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func pollInterval(cfg config.SchedulerConfig) time.Duration {
	interval := cfg.GetFollowUpPollInterval()
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return interval
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
