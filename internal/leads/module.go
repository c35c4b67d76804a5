// Package leads provides the lead store bounded context module.
package leads

import (
	apphttp "sdr_backend/internal/http"
	"sdr_backend/internal/leads/handler"
	"sdr_backend/internal/leads/ports"
	"sdr_backend/internal/leads/repository"
	"sdr_backend/internal/leads/service"
	"sdr_backend/platform/config"
	"sdr_backend/platform/logger"
	"sdr_backend/platform/phone"
	"sdr_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates the leads module. cadence may be nil and wired later
// through Service().SetCadenceScheduler.
func NewModule(pool *pgxpool.Pool, cadence ports.CadenceScheduler, val *validator.Validator, cfg config.PhoneConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cadence, phone.NewNormalizer(cfg.GetPhoneDefaultRegion()), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
