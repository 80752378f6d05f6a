package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/repository"
)

var _ repository.ActivationRequestRepository = (*PostgresRequestRepo)(nil)

type PostgresRequestRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRequestRepo(pool *pgxpool.Pool) *PostgresRequestRepo {
	return &PostgresRequestRepo{pool: pool}
}

const requestColumns = `
id, dealer_name, dealer_mobile, dealer_email,
customer_name, customer_mobile, customer_email,
model_id, serial_number, plan_id, plan_name, plan_part_code,
device_activation_date, billing_location, payment_type,
invoice_path, status, osticket_id, email_sent, created_at, updated_at`

func (r *PostgresRequestRepo) Save(ctx context.Context, tx repository.Tx, a *model.ActivationRequest) error {
	const q = `
INSERT INTO activation_requests (
  id, dealer_name, dealer_mobile, dealer_email,
  customer_name, customer_mobile, customer_email,
  model_id, serial_number, plan_id, plan_name, plan_part_code,
  device_activation_date, billing_location, payment_type,
  invoice_path, status, osticket_id, email_sent, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21
) ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  invoice_path = EXCLUDED.invoice_path,
  osticket_id = EXCLUDED.osticket_id,
  email_sent = EXCLUDED.email_sent,
  updated_at = EXCLUDED.updated_at;
`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := qx.Exec(ctx, q,
		a.ID, a.DealerName, a.DealerMobile, a.DealerEmail,
		a.CustomerName, a.CustomerMobile, a.CustomerEmail,
		a.ModelID, a.SerialNumber, a.PlanID, a.PlanName, a.PlanPartCode,
		a.DeviceActivationDate, a.BillingLocation, a.PaymentType,
		a.InvoicePath, a.Status, a.OSTicketID, a.EmailSent, a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Save request: %w", err)
	}
	return nil
}

func (r *PostgresRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationRequest, error) {
	const q = `SELECT ` + requestColumns + ` FROM activation_requests WHERE id = $1;`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var a model.ActivationRequest
	if err := scanRequest(qx.QueryRow(ctx, q, id), &a); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID request: %w", err)
	}
	return &a, nil
}

func (r *PostgresRequestRepo) List(ctx context.Context, tx repository.Tx, status string) ([]*model.ActivationRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM activation_requests ORDER BY created_at DESC;`
	args := []interface{}{}
	if status != "" {
		q = `SELECT ` + requestColumns + ` FROM activation_requests WHERE status = $1 ORDER BY created_at DESC;`
		args = append(args, status)
	}
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := qx.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("List requests: %w", err)
	}
	defer rows.Close()
	var out []*model.ActivationRequest
	for rows.Next() {
		var a model.ActivationRequest
		if err := scanRequest(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *PostgresRequestRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id, status string) error {
	const q = `UPDATE activation_requests SET status = $2, updated_at = $3 WHERE id = $1;`
	return r.exec(ctx, tx, q, id, status, time.Now())
}

func (r *PostgresRequestRepo) SetEmailSent(ctx context.Context, tx repository.Tx, id string, sent bool) error {
	const q = `UPDATE activation_requests SET email_sent = $2, updated_at = $3 WHERE id = $1;`
	return r.exec(ctx, tx, q, id, sent, time.Now())
}

func (r *PostgresRequestRepo) SetTicketID(ctx context.Context, tx repository.Tx, id, ticketID string) error {
	const q = `UPDATE activation_requests SET osticket_id = $2, updated_at = $3 WHERE id = $1;`
	return r.exec(ctx, tx, q, id, ticketID, time.Now())
}

func (r *PostgresRequestRepo) SetInvoicePath(ctx context.Context, tx repository.Tx, id, path string) error {
	const q = `UPDATE activation_requests SET invoice_path = $2, updated_at = $3 WHERE id = $1;`
	return r.exec(ctx, tx, q, id, path, time.Now())
}

func (r *PostgresRequestRepo) exec(ctx context.Context, tx repository.Tx, q string, args ...interface{}) error {
	qx, err := pick(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := qx.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRequestRepo) Counts(ctx context.Context, tx repository.Tx) (*repository.RequestCounts, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE status = 'pending_approval'),
       count(*) FILTER (WHERE status = 'pending'),
       count(*) FILTER (WHERE status = 'activated'),
       count(*) FILTER (WHERE status = 'payment_pending'),
       count(*) FILTER (WHERE status = 'declined')
  FROM activation_requests;
`
	qx, err := pick(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var c repository.RequestCounts
	if err := qx.QueryRow(ctx, q).Scan(
		&c.Total, &c.PendingApproval, &c.Pending, &c.Activated, &c.PaymentPending, &c.Declined,
	); err != nil {
		return nil, fmt.Errorf("Counts: %w", err)
	}
	return &c, nil
}

func scanRequest(row pgx.Row, a *model.ActivationRequest) error {
	return row.Scan(
		&a.ID, &a.DealerName, &a.DealerMobile, &a.DealerEmail,
		&a.CustomerName, &a.CustomerMobile, &a.CustomerEmail,
		&a.ModelID, &a.SerialNumber, &a.PlanID, &a.PlanName, &a.PlanPartCode,
		&a.DeviceActivationDate, &a.BillingLocation, &a.PaymentType,
		&a.InvoicePath, &a.Status, &a.OSTicketID, &a.EmailSent, &a.CreatedAt, &a.UpdatedAt,
	)
}
