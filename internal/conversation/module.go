// Package conversation provides the inbound chat bounded context module.
package conversation

import (
	"sdr_backend/internal/conversation/handler"
	"sdr_backend/internal/conversation/ports"
	"sdr_backend/internal/conversation/repository"
	"sdr_backend/internal/conversation/service"
	apphttp "sdr_backend/internal/http"
	"sdr_backend/platform/config"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the conversation module. model and dedup may be nil.
func NewModule(pool *pgxpool.Pool, leads ports.LeadStore, model ports.Conversationalist, dedup handler.Deduplicator, val *validator.Validator, cfg config.ConversationConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), leads, model, cfg.GetConversationHistoryLimit(), log)
	return &Module{
		handler: handler.New(svc, val, dedup, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public, rate limited webhook.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/conversation")
	if ctx.WebhookRateLimiter != nil {
		group.Use(ctx.WebhookRateLimiter.RateLimit())
	}
	group.POST("/webhook", m.handler.Webhook)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
