package model

import (
	"time"

	"applecare-activation/internal/domain"

	"github.com/google/uuid"
)

// Plan represents a purchasable AppleCare+ SKU. MRP is the list price in
// whole rupees. Plans are never hard-deleted; deactivation clears Active.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PartCode    string    `json:"part_code"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	MRP         int64     `json:"mrp"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name, partCode, sku, description string, mrp int64) (*Plan, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || partCode == "" || mrp < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:          id,
		Name:        name,
		PartCode:    partCode,
		SKU:         sku,
		Description: description,
		MRP:         mrp,
		Active:      true,
		CreatedAt:   time.Now(),
	}, nil
}
