package usecase

import (
	"context"

	"applecare-activation/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Counts(ctx context.Context) (*repository.RequestCounts, error)
}

type statsUC struct {
	requests repository.ActivationRequestRepository
}

func NewStatsUseCase(requests repository.ActivationRequestRepository) *statsUC {
	return &statsUC{requests: requests}
}

func (s *statsUC) Counts(ctx context.Context) (*repository.RequestCounts, error) {
	return s.requests.Counts(ctx, repository.NoTX)
}
