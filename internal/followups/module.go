// Package followups provides the follow-up cadence bounded context module.
package followups

import (
	"sdr_backend/internal/followups/handler"
	"sdr_backend/internal/followups/repository"
	"sdr_backend/internal/followups/service"
	apphttp "sdr_backend/internal/http"
	"sdr_backend/platform/config"
	"sdr_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the follow-ups bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the follow-ups module.
func NewModule(pool *pgxpool.Pool, sender service.Sender, leads handler.LeadLookup, cfg config.SchedulerConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), sender, log,
		service.WithBatchSize(cfg.GetFollowUpBatchSize()),
	)
	return &Module{
		handler: handler.New(svc, leads),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Service returns the service layer for the scheduler and the leads module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts follow-up routes under the lead they belong to.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
