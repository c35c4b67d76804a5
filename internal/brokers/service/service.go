// Package service exposes the broker directory.
package service

import (
	"context"

	"sdr_backend/internal/brokers/domain"
	"sdr_backend/internal/brokers/repository"
	"sdr_backend/platform/apperr"
	"sdr_backend/platform/logger"

	"github.com/google/uuid"
)

// Service provides read access to brokers plus startup seeding.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a broker service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, log: log}
}

// SeedIfEmpty populates an empty directory from seeds.
func (s *Service) SeedIfEmpty(ctx context.Context, seeds []domain.Seed) (int, error) {
	n, err := s.repo.SeedIfEmpty(ctx, seeds)
	if err != nil {
		return 0, apperr.Internal("seed brokers failed", err)
	}
	if n > 0 {
		s.log.Info("broker directory seeded", "count", n)
	}
	return n, nil
}

// List returns all brokers in insertion order.
func (s *Service) List(ctx context.Context) ([]domain.Broker, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list brokers failed", err)
	}
	return items, nil
}

// GetByID loads a broker.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Broker, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return domain.Broker{}, err
		}
		return domain.Broker{}, apperr.Internal("get broker failed", err)
	}
	return b, nil
}
