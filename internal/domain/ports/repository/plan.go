package repository

import (
	"context"

	"applecare-activation/internal/domain/model"
)

// PlanRepository is the port for plan persistence. Deactivate is the soft
// delete: it clears the active flag but never removes the row.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Plan, error)
	FindBySKU(ctx context.Context, tx Tx, sku string) (*model.Plan, error)
	List(ctx context.Context, tx Tx, activeOnly bool) ([]*model.Plan, error)
	Deactivate(ctx context.Context, tx Tx, id string) error
}
