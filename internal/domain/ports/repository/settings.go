package repository

import (
	"context"

	"applecare-activation/internal/domain/model"
)

// SettingsRepository persists the configuration singleton. Get materializes
// and stores the defaults when no row exists yet.
type SettingsRepository interface {
	Get(ctx context.Context, tx Tx) (*model.Settings, error)
	Save(ctx context.Context, tx Tx, s *model.Settings) error
}
