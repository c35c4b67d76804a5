// Package brokers provides the broker directory bounded context module.
package brokers

import (
	"context"

	"sdr_backend/internal/brokers/handler"
	"sdr_backend/internal/brokers/repository"
	"sdr_backend/internal/brokers/service"
	apphttp "sdr_backend/internal/http"
	"sdr_backend/platform/config"
	"sdr_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the brokers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	cfg     config.BrokerSeedConfig
}

// NewModule creates the brokers module.
func NewModule(pool *pgxpool.Pool, cfg config.BrokerSeedConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc), service: svc, cfg: cfg}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "brokers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Seed loads the configured seed file and populates an empty directory.
func (m *Module) Seed(ctx context.Context) error {
	seeds, err := service.LoadSeeds(m.cfg.GetBrokerSeedFile())
	if err != nil {
		return err
	}
	_, err = m.service.SeedIfEmpty(ctx, seeds)
	return err
}

// RegisterRoutes mounts broker routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/brokers"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
