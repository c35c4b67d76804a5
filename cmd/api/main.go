package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sdr_backend/internal/adapters/storage"
	"sdr_backend/internal/brokers"
	"sdr_backend/internal/conversation"
	"sdr_backend/internal/conversation/agent"
	conversationhandler "sdr_backend/internal/conversation/handler"
	conversationports "sdr_backend/internal/conversation/ports"
	"sdr_backend/internal/email"
	"sdr_backend/internal/events"
	"sdr_backend/internal/followups"
	followupsservice "sdr_backend/internal/followups/service"
	"sdr_backend/internal/handoff"
	apphttp "sdr_backend/internal/http"
	"sdr_backend/internal/http/router"
	"sdr_backend/internal/leads"
	"sdr_backend/internal/media"
	mediaservice "sdr_backend/internal/media/service"
	"sdr_backend/internal/notification"
	"sdr_backend/internal/scheduler"
	"sdr_backend/internal/whatsapp"
	"sdr_backend/platform/ai/elevenlabs"
	"sdr_backend/platform/ai/gemini"
	"sdr_backend/platform/ai/whisper"
	"sdr_backend/platform/config"
	"sdr_backend/platform/db"
	"sdr_backend/platform/idempotency"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const webhookDedupPrefix = "sdr:webhook:"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.RequireJWT(); err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	brokersModule := brokers.NewModule(pool, cfg, log)
	if err := withRetry(ctx, log, "broker seed", 3, time.Second, func() error {
		return brokersModule.Seed(ctx)
	}); err != nil {
		log.Error("failed to seed brokers", "error", err)
		panic("failed to seed brokers: " + err.Error())
	}

	notificationModule := notification.New(initEmailSender(cfg, log), log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(pool, nil, val, cfg, log)
	followupsModule := followups.NewModule(pool, initFollowUpSender(cfg, log), leadsModule.Service(), cfg, log)
	// Leads schedule the cadence through followups; wired after both exist.
	leadsModule.Service().SetCadenceScheduler(followupsModule.Service())

	handoffModule := handoff.NewModule(pool, eventBus, leadsModule.Service(), log)

	llmAgent := initAgent(ctx, cfg, log)
	var conversationalist conversationports.Conversationalist
	if llmAgent != nil {
		conversationalist = llmAgent
	}

	dedup, closeDedup := initDeduplicator(ctx, cfg, log)
	if closeDedup != nil {
		defer closeDedup()
	}
	conversationModule := conversation.NewModule(pool, leadsModule.Service(), conversationalist, dedup, val, cfg, log)

	mediaDeps := mediaservice.Deps{
		Leads:     leadsModule.Service(),
		FollowUps: followupsModule.Service(),
		Bucket:    cfg.GetMinioBucketLeadMedia(),
	}
	if llmAgent != nil {
		mediaDeps.Extractor = llmAgent
	}
	if storageSvc := initStorage(ctx, cfg, log); storageSvc != nil {
		mediaDeps.Store = storageSvc
	}
	if transcriber := initTranscriber(cfg, log); transcriber != nil {
		defer func() { _ = transcriber.Close() }()
		mediaDeps.Transcriber = transcriber
	}
	if speech := elevenlabs.New(cfg); speech != nil {
		mediaDeps.Speech = speech
	} else {
		log.Warn("ELEVENLABS_API_KEY not configured; speech synthesis disabled")
	}
	mediaModule := media.NewModule(mediaDeps, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			followupsModule,
			handoffModule,
			brokersModule,
			conversationModule,
			mediaModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.GetSchedulerMode() == config.SchedulerModeTicker {
		ticker := scheduler.NewTicker(followupsModule.Service(), cfg.GetFollowUpPollInterval(), log)
		g.Go(func() error {
			ticker.Run(gctx)
			return nil
		})
	} else {
		log.Info("in-process follow-up ticker disabled", "mode", cfg.GetSchedulerMode())
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
}

func initEmailSender(cfg config.SMTPConfig, log *logger.Logger) email.Sender {
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP_HOST not configured; handoff emails disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

func initFollowUpSender(cfg config.WhatsAppConfig, log *logger.Logger) followupsservice.Sender {
	if client := whatsapp.NewClient(cfg, log); client != nil {
		return client
	}
	log.Warn("WHATSAPP_URL not configured; follow-ups are logged instead of sent")
	return followupsservice.NewLogSender(log)
}

func initAgent(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) *agent.Agent {
	if !cfg.IsGeminiEnabled() {
		log.Warn("GEMINI_API_KEY not configured; conversation replies use the fallback message")
		return nil
	}
	client, err := gemini.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize gemini client", "error", err)
		return nil
	}
	return agent.New(client)
}

func initDeduplicator(ctx context.Context, cfg config.SchedulerConfig, log *logger.Logger) (conversationhandler.Deduplicator, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; webhook deduplication disabled")
		return nil, nil
	}

	store, err := idempotency.NewFromURL(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure(), webhookDedupPrefix)
	if err != nil {
		log.Error("failed to initialize webhook deduplication", "error", err)
		return nil, nil
	}

	return store, func() {
		_ = store.Close()
	}
}

func initStorage(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) *storage.MinIOService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; audio uploads disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketLeadMedia()
	if err := withRetry(ctx, log, "ensure lead-media bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "leadMediaBucket", bucket)
	return storageSvc
}

func initTranscriber(cfg config.WhisperConfig, log *logger.Logger) *whisper.Transcriber {
	if !cfg.IsWhisperEnabled() {
		log.Warn("WHISPER_MODEL_PATH not configured; audio transcription disabled")
		return nil
	}
	transcriber, err := whisper.New(cfg)
	if err != nil {
		log.Error("failed to load whisper model", "error", err)
		return nil
	}
	return transcriber
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
