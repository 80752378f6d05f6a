package usecase

import (
	"context"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
)

var _ SettingsUseCase = (*settingsUC)(nil)

type SettingsUseCase interface {
	Get(ctx context.Context) (*model.Settings, error)
	// Update applies a partial overwrite and returns the stored singleton.
	Update(ctx context.Context, u model.SettingsUpdate) (*model.Settings, error)
}

type settingsUC struct {
	repo repository.SettingsRepository
}

func NewSettingsUseCase(repo repository.SettingsRepository) *settingsUC {
	return &settingsUC{repo: repo}
}

func (uc *settingsUC) Get(ctx context.Context) (*model.Settings, error) {
	return uc.repo.Get(ctx, repository.NoTX)
}

func (uc *settingsUC) Update(ctx context.Context, u model.SettingsUpdate) (*model.Settings, error) {
	s, err := uc.repo.Get(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	s.Apply(u)
	if err := uc.repo.Save(ctx, repository.NoTX, s); err != nil {
		return nil, err
	}
	return s, nil
}
