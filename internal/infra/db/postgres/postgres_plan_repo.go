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

var _ repository.PlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

const planColumns = `id, name, part_code, sku, description, mrp, active, created_at`

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const q = `
INSERT INTO plans (id, name, part_code, sku, description, mrp, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      part_code   = EXCLUDED.part_code,
      sku         = EXCLUDED.sku,
      description = EXCLUDED.description,
      mrp         = EXCLUDED.mrp,
      active      = EXCLUDED.active;
`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := qx.Exec(ctx, q,
		plan.ID, plan.Name, plan.PartCode, plan.SKU, plan.Description, plan.MRP, plan.Active, plan.CreatedAt,
	); err != nil {
		return fmt.Errorf("Save plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE id = $1;`
	return r.findOne(ctx, tx, q, id)
}

func (r *PostgresPlanRepo) FindBySKU(ctx context.Context, tx repository.Tx, sku string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE sku = $1;`
	return r.findOne(ctx, tx, q, sku)
}

func (r *PostgresPlanRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Plan, error) {
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var p model.Plan
	if err := qx.QueryRow(ctx, q, arg).Scan(
		&p.ID, &p.Name, &p.PartCode, &p.SKU, &p.Description, &p.MRP, &p.Active, &p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &p, nil
}

func (r *PostgresPlanRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans ORDER BY created_at;`
	if activeOnly {
		q = `SELECT ` + planColumns + ` FROM plans WHERE active ORDER BY created_at;`
	}
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := qx.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("List plans: %w", err)
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.PartCode, &p.SKU, &p.Description, &p.MRP, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresPlanRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE plans SET active = false WHERE id = $1;`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := qx.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("Deactivate plan: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
