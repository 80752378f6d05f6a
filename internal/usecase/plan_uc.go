package usecase

import (
	"context"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
	"applecare-activation/internal/infra/metrics"
)

var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Create(ctx context.Context, name, partCode, sku, description string, mrp int64) (*model.Plan, error)
	Update(ctx context.Context, id, name, partCode, sku, description string, mrp int64) (*model.Plan, error)
	Get(ctx context.Context, id string) (*model.Plan, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Plan, error)
	Deactivate(ctx context.Context, id string) error
	// Import upserts rows from a spreadsheet by SKU and returns the number
	// of rows applied.
	Import(ctx context.Context, rows []PlanImport) (int, error)
}

// PlanImport is one upsert row of a bulk upload.
type PlanImport struct {
	Name        string
	PartCode    string
	SKU         string
	Description string
	MRP         int64
}

type planUC struct {
	repo repository.PlanRepository
}

func NewPlanUseCase(repo repository.PlanRepository) *planUC {
	return &planUC{repo: repo}
}

func (uc *planUC) Create(ctx context.Context, name, partCode, sku, description string, mrp int64) (*model.Plan, error) {
	plan, err := model.NewPlan("", name, partCode, sku, description, mrp)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *planUC) Update(ctx context.Context, id, name, partCode, sku, description string, mrp int64) (*model.Plan, error) {
	plan, err := uc.repo.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if name == "" || partCode == "" || mrp < 0 {
		return nil, domain.ErrInvalidArgument
	}
	plan.Name = name
	plan.PartCode = partCode
	plan.SKU = sku
	plan.Description = description
	plan.MRP = mrp
	if err := uc.repo.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *planUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	return uc.repo.FindByID(ctx, repository.NoTX, id)
}

func (uc *planUC) List(ctx context.Context, activeOnly bool) ([]*model.Plan, error) {
	plans, err := uc.repo.List(ctx, repository.NoTX, activeOnly)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*model.Plan{}
	}
	return plans, nil
}

func (uc *planUC) Deactivate(ctx context.Context, id string) error {
	return uc.repo.Deactivate(ctx, repository.NoTX, id)
}

func (uc *planUC) Import(ctx context.Context, rows []PlanImport) (int, error) {
	imported := 0
	for _, row := range rows {
		if row.Name == "" || row.PartCode == "" {
			continue
		}
		var plan *model.Plan
		if row.SKU != "" {
			existing, err := uc.repo.FindBySKU(ctx, repository.NoTX, row.SKU)
			switch err {
			case nil:
				plan = existing
			case domain.ErrNotFound:
				// fall through to create
			default:
				return imported, err
			}
		}
		if plan == nil {
			p, err := model.NewPlan("", row.Name, row.PartCode, row.SKU, row.Description, row.MRP)
			if err != nil {
				return imported, err
			}
			plan = p
		} else {
			plan.Name = row.Name
			plan.PartCode = row.PartCode
			plan.Description = row.Description
			plan.MRP = row.MRP
			plan.Active = true
		}
		if err := uc.repo.Save(ctx, repository.NoTX, plan); err != nil {
			return imported, err
		}
		imported++
	}
	metrics.AddPlansImported(imported)
	return imported, nil
}
