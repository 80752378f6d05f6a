package repository

import (
	"context"

	"applecare-activation/internal/domain/model"
)

// RequestCounts aggregates dashboard tile numbers per status.
type RequestCounts struct {
	Total           int `json:"total"`
	PendingApproval int `json:"pending_approval"`
	Pending         int `json:"pending"`
	Activated       int `json:"activated"`
	PaymentPending  int `json:"payment_pending"`
	Declined        int `json:"declined"`
}

type ActivationRequestRepository interface {
	Save(ctx context.Context, tx Tx, r *model.ActivationRequest) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ActivationRequest, error)
	// List returns requests newest first; status == "" means unfiltered.
	List(ctx context.Context, tx Tx, status string) ([]*model.ActivationRequest, error)
	UpdateStatus(ctx context.Context, tx Tx, id, status string) error
	SetEmailSent(ctx context.Context, tx Tx, id string, sent bool) error
	SetTicketID(ctx context.Context, tx Tx, id, ticketID string) error
	SetInvoicePath(ctx context.Context, tx Tx, id, path string) error
	Counts(ctx context.Context, tx Tx) (*RequestCounts, error)
}
