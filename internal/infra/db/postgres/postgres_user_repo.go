package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, name, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET email = EXCLUDED.email,
      name  = EXCLUDED.name,
      password_hash = EXCLUDED.password_hash;
`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := qx.Exec(ctx, q, u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt); err != nil {
		return fmt.Errorf("Save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, email, name, password_hash, created_at
  FROM users WHERE id = $1;
`
	return r.findOne(ctx, tx, q, id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `
SELECT id, email, name, password_hash, created_at
  FROM users WHERE lower(email) = lower($1);
`
	return r.findOne(ctx, tx, q, email)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := qx.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, tx repository.Tx, id, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1;`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := qx.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return fmt.Errorf("UpdatePassword: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
