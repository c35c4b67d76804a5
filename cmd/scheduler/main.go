package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sdr_backend/internal/followups"
	followupsservice "sdr_backend/internal/followups/service"
	"sdr_backend/internal/scheduler"
	"sdr_backend/internal/whatsapp"
	"sdr_backend/platform/config"
	"sdr_backend/platform/db"
	"sdr_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "mode", cfg.GetSchedulerMode())

	if cfg.GetSchedulerMode() == config.SchedulerModeOff {
		log.Info("scheduler disabled by SCHEDULER_MODE=off")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var sender followupsservice.Sender = followupsservice.NewLogSender(log)
	if client := whatsapp.NewClient(cfg, log); client != nil {
		sender = client
	} else {
		log.Warn("WHATSAPP_URL not configured; follow-ups are logged instead of sent")
	}

	// Routes are not mounted here, so no lead lookup is needed.
	followupsModule := followups.NewModule(pool, sender, nil, cfg, log)
	processor := followupsModule.Service()

	g, gctx := errgroup.WithContext(ctx)
	switch cfg.GetSchedulerMode() {
	case config.SchedulerModeAsynq:
		periodic, err := scheduler.NewPeriodic(cfg, log)
		if err != nil {
			log.Error("failed to initialize periodic scheduler", "error", err)
			panic("failed to initialize periodic scheduler: " + err.Error())
		}
		worker, err := scheduler.NewWorker(cfg, processor, log)
		if err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
		g.Go(func() error { return periodic.Run(gctx) })
		g.Go(func() error { return worker.Run(gctx) })
	default:
		ticker := scheduler.NewTicker(processor, cfg.GetFollowUpPollInterval(), log)
		g.Go(func() error {
			ticker.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped", "error", err)
		panic("scheduler stopped: " + err.Error())
	}
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
