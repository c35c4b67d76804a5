// Package handoff provides the handoff orchestration bounded context module.
package handoff

import (
	"sdr_backend/internal/events"
	"sdr_backend/internal/handoff/handler"
	"sdr_backend/internal/handoff/repository"
	"sdr_backend/internal/handoff/service"
	apphttp "sdr_backend/internal/http"
	"sdr_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the handoff bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the handoff module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, leads handler.LeadLookup, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), bus, log)
	return &Module{handler: handler.New(svc, leads), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "handoff"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the handoff route under the lead it finalizes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
