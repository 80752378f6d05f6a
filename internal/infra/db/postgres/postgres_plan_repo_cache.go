package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
	"applecare-activation/internal/infra/metrics"
	red "applecare-activation/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches plan reads in Redis. The plan catalog is
// read on every public form load, so the hot path is List(active).
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient, ttl time.Duration) repository.PlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &planRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func listKey(activeOnly bool) string {
	if activeOnly {
		return "plans:active"
	}
	return "plans:all"
}

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	key := fmt.Sprintf("plan:%s", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var plan model.Plan
		if json.Unmarshal([]byte(val), &plan) == nil {
			metrics.IncCacheRequest("plan", "hit")
			return &plan, nil
		}
	}
	metrics.IncCacheRequest("plan", "miss")

	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plan); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return plan, nil
}

func (d *planRepoCacheDecorator) FindBySKU(ctx context.Context, tx repository.Tx, sku string) (*model.Plan, error) {
	// SKU lookups only happen during spreadsheet import; not worth caching.
	return d.inner.FindBySKU(ctx, tx, sku)
}

func (d *planRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Plan, error) {
	key := listKey(activeOnly)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var plans []*model.Plan
		if json.Unmarshal([]byte(val), &plans) == nil {
			metrics.IncCacheRequest("plan_list", "hit")
			return plans, nil
		}
	}
	metrics.IncCacheRequest("plan_list", "miss")

	plans, err := d.inner.List(ctx, tx, activeOnly)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plans); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return plans, nil
}

// Write operations invalidate the affected keys.

func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	d.invalidate(ctx, plan.ID)
	return d.inner.Save(ctx, tx, plan)
}

func (d *planRepoCacheDecorator) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	d.invalidate(ctx, id)
	return d.inner.Deactivate(ctx, tx, id)
}

func (d *planRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	_ = d.cache.Del(ctx, fmt.Sprintf("plan:%s", id), listKey(true), listKey(false))
}
