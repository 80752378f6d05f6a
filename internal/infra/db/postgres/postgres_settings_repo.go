package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
)

var _ repository.SettingsRepository = (*PostgresSettingsRepo)(nil)

type PostgresSettingsRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSettingsRepo(pool *pgxpool.Pool) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{pool: pool}
}

// Get returns the singleton, materializing defaults on first access.
func (r *PostgresSettingsRepo) Get(ctx context.Context, tx repository.Tx) (*model.Settings, error) {
	const q = `
SELECT id, apple_email, approval_email, smtp_host, smtp_port, smtp_email, smtp_password,
       osticket_url, osticket_api_key, partner_name, updated_at
  FROM settings WHERE id = $1;
`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var s model.Settings
	err = qx.QueryRow(ctx, q, model.SettingsID).Scan(
		&s.ID, &s.AppleEmail, &s.ApprovalEmail, &s.SMTPHost, &s.SMTPPort, &s.SMTPEmail, &s.SMTPPassword,
		&s.OSTicketURL, &s.OSTicketAPIKey, &s.PartnerName, &s.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		defaults := model.DefaultSettings()
		if err := r.Save(ctx, tx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get settings: %w", err)
	}
	return &s, nil
}

func (r *PostgresSettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.Settings) error {
	const q = `
INSERT INTO settings (
  id, apple_email, approval_email, smtp_host, smtp_port, smtp_email, smtp_password,
  osticket_url, osticket_api_key, partner_name, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  apple_email      = EXCLUDED.apple_email,
  approval_email   = EXCLUDED.approval_email,
  smtp_host        = EXCLUDED.smtp_host,
  smtp_port        = EXCLUDED.smtp_port,
  smtp_email       = EXCLUDED.smtp_email,
  smtp_password    = EXCLUDED.smtp_password,
  osticket_url     = EXCLUDED.osticket_url,
  osticket_api_key = EXCLUDED.osticket_api_key,
  partner_name     = EXCLUDED.partner_name,
  updated_at       = EXCLUDED.updated_at;
`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := qx.Exec(ctx, q,
		s.ID, s.AppleEmail, s.ApprovalEmail, s.SMTPHost, s.SMTPPort, s.SMTPEmail, s.SMTPPassword,
		s.OSTicketURL, s.OSTicketAPIKey, s.PartnerName, s.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Save settings: %w", err)
	}
	return nil
}
