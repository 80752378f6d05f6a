package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/adapter"
	"applecare-activation/internal/domain/ports/repository"
	"applecare-activation/internal/infra/metrics"
	"applecare-activation/internal/infra/worker"
)

// Approval link actions.
const (
	ActionApprove = "approve"
	ActionDecline = "decline"
)

// TaskQueue is the minimal surface of the background worker pool the use
// case needs for fire-and-forget side effects.
type TaskQueue interface {
	Submit(task worker.Task) error
}

var _ RequestUseCase = (*requestUC)(nil)

type RequestUseCase interface {
	// Create validates the submission, snapshots the selected plan,
	// generates the invoice and queues the approval notification.
	Create(ctx context.Context, in model.NewRequestInput) (*model.ActivationRequest, error)
	Get(ctx context.Context, id string) (*model.ActivationRequest, error)
	List(ctx context.Context, status string) ([]*model.ActivationRequest, error)
	// SetStatus applies an arbitrary member of the closed status set.
	SetStatus(ctx context.Context, id, status string) error
	// Approve moves a pending_approval request to pending and queues the
	// ticket + Apple-mail side effects.
	Approve(ctx context.Context, id string) error
	// Decline moves a pending_approval request to declined.
	Decline(ctx context.Context, id string) error
	// ResendEmail queues another delivery of the activation mail.
	ResendEmail(ctx context.Context, id string) error
	// AttachInvoice records a manually uploaded invoice PDF, replacing the
	// generated one for all later mails and downloads.
	AttachInvoice(ctx context.Context, id, path string) error
	// RetryPending re-queues side effects for approved requests whose
	// activation mail never went out. Returns the number queued.
	RetryPending(ctx context.Context) (int, error)
	// VerifyApprovalToken checks an email-link token for the given action.
	VerifyApprovalToken(id, action, token string) bool
	ApprovalToken(id, action string) string
}

type requestUC struct {
	requests repository.ActivationRequestRepository
	plans    repository.PlanRepository
	settings repository.SettingsRepository
	txm      repository.TransactionManager

	invoices adapter.InvoiceGenerator
	mailer   adapter.Mailer
	tickets  adapter.TicketClient
	queue    TaskQueue

	secret  string
	baseURL string
	log     *zerolog.Logger
}

func NewRequestUseCase(
	requests repository.ActivationRequestRepository,
	plans repository.PlanRepository,
	settings repository.SettingsRepository,
	txm repository.TransactionManager,
	invoices adapter.InvoiceGenerator,
	mailer adapter.Mailer,
	tickets adapter.TicketClient,
	queue TaskQueue,
	secret, baseURL string,
	logger *zerolog.Logger,
) *requestUC {
	return &requestUC{
		requests: requests,
		plans:    plans,
		settings: settings,
		txm:      txm,
		invoices: invoices,
		mailer:   mailer,
		tickets:  tickets,
		queue:    queue,
		secret:   secret,
		baseURL:  baseURL,
		log:      logger,
	}
}

func (uc *requestUC) Create(ctx context.Context, in model.NewRequestInput) (*model.ActivationRequest, error) {
	var req *model.ActivationRequest
	err := uc.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		plan, err := uc.plans.FindByID(ctx, tx, in.PlanID)
		if err != nil {
			if err == domain.ErrNotFound {
				return domain.ErrInvalidPlan
			}
			return err
		}
		req, err = model.NewActivationRequest(in, plan)
		if err != nil {
			return err
		}
		return uc.requests.Save(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRequestCreated()

	// Invoice generation is best-effort: a render failure must not lose the
	// submission that is already persisted.
	if path, err := uc.invoices.Generate(req); err != nil {
		uc.log.Error().Err(err).Str("request_id", req.ID).Msg("invoice generation failed")
	} else {
		req.InvoicePath = path
		if err := uc.requests.SetInvoicePath(ctx, repository.NoTX, req.ID, path); err != nil {
			uc.log.Error().Err(err).Str("request_id", req.ID).Msg("persist invoice path failed")
		}
	}

	uc.enqueue(req.ID, "approval notification", uc.notifyApprover)
	return req, nil
}

func (uc *requestUC) Get(ctx context.Context, id string) (*model.ActivationRequest, error) {
	return uc.requests.FindByID(ctx, repository.NoTX, id)
}

func (uc *requestUC) List(ctx context.Context, status string) ([]*model.ActivationRequest, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	out, err := uc.requests.List(ctx, repository.NoTX, status)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.ActivationRequest{}
	}
	return out, nil
}

func (uc *requestUC) SetStatus(ctx context.Context, id, status string) error {
	if !model.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}
	if err := uc.requests.UpdateStatus(ctx, repository.NoTX, id, status); err != nil {
		return err
	}
	metrics.IncStatusChange(status)
	return nil
}

func (uc *requestUC) Approve(ctx context.Context, id string) error {
	if err := uc.transition(ctx, id, model.StatusPending); err != nil {
		return err
	}
	uc.enqueue(id, "activation side effects", uc.process)
	return nil
}

func (uc *requestUC) Decline(ctx context.Context, id string) error {
	return uc.transition(ctx, id, model.StatusDeclined)
}

// transition applies the one guarded move in the lifecycle: only a request
// still awaiting review may be approved or declined.
func (uc *requestUC) transition(ctx context.Context, id, to string) error {
	req, err := uc.requests.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if req.Status != model.StatusPendingApproval {
		return domain.ErrNotAwaitingReview
	}
	if err := uc.requests.UpdateStatus(ctx, repository.NoTX, id, to); err != nil {
		return err
	}
	metrics.IncStatusChange(to)
	return nil
}

func (uc *requestUC) ResendEmail(ctx context.Context, id string) error {
	if _, err := uc.requests.FindByID(ctx, repository.NoTX, id); err != nil {
		return err
	}
	uc.enqueue(id, "mail resend", uc.sendActivationMail)
	return nil
}

func (uc *requestUC) AttachInvoice(ctx context.Context, id, path string) error {
	if _, err := uc.requests.FindByID(ctx, repository.NoTX, id); err != nil {
		return err
	}
	return uc.requests.SetInvoicePath(ctx, repository.NoTX, id, path)
}

func (uc *requestUC) RetryPending(ctx context.Context) (int, error) {
	reqs, err := uc.requests.List(ctx, repository.NoTX, model.StatusPending)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, req := range reqs {
		if req.EmailSent {
			continue
		}
		uc.enqueue(req.ID, "side-effect retry", uc.process)
		n++
	}
	return n, nil
}

func (uc *requestUC) enqueue(id, what string, fn func(ctx context.Context, id string) error) {
	err := uc.queue.Submit(func(ctx context.Context) error {
		return fn(ctx, id)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("request_id", id).Msgf("enqueue %s failed", what)
	}
}

// process runs the post-approval side effects: support ticket first, then
// the activation mail. Both are at-least-once; failures are logged and the
// flags stay unset so a resend can retry.
func (uc *requestUC) process(ctx context.Context, id string) error {
	req, err := uc.requests.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	settings, err := uc.settings.Get(ctx, repository.NoTX)
	if err != nil {
		return err
	}

	if req.OSTicketID == "" {
		if !settings.TicketConfigured() {
			uc.log.Warn().Msg("ticket settings not configured")
			metrics.IncTicket("skipped")
		} else if ticketID, err := uc.tickets.CreateTicket(ctx, settings, req); err != nil {
			uc.log.Error().Err(err).Str("request_id", id).Msg("ticket creation failed")
			metrics.IncTicket("failed")
		} else {
			metrics.IncTicket("created")
			if err := uc.requests.SetTicketID(ctx, repository.NoTX, id, ticketID); err != nil {
				uc.log.Error().Err(err).Str("request_id", id).Msg("persist ticket id failed")
			}
		}
	}

	return uc.sendActivationMail(ctx, id)
}

func (uc *requestUC) sendActivationMail(ctx context.Context, id string) error {
	req, err := uc.requests.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	settings, err := uc.settings.Get(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	if !settings.MailConfigured() {
		uc.log.Warn().Msg("email settings not configured")
		metrics.IncMail("skipped")
		return nil
	}
	if err := uc.mailer.SendActivation(ctx, settings, req, req.InvoicePath); err != nil {
		metrics.IncMail("failed")
		if serr := uc.requests.SetEmailSent(ctx, repository.NoTX, id, false); serr != nil {
			uc.log.Error().Err(serr).Str("request_id", id).Msg("persist email flag failed")
		}
		return fmt.Errorf("send activation mail: %w", err)
	}
	metrics.IncMail("sent")
	return uc.requests.SetEmailSent(ctx, repository.NoTX, id, true)
}

// notifyApprover mails the approve/decline links for a fresh submission.
func (uc *requestUC) notifyApprover(ctx context.Context, id string) error {
	req, err := uc.requests.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	settings, err := uc.settings.Get(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	if settings.ApprovalEmail == "" || settings.SMTPEmail == "" {
		uc.log.Warn().Msg("approval email not configured")
		metrics.IncMail("skipped")
		return nil
	}
	approveURL := uc.linkURL(id, ActionApprove)
	declineURL := uc.linkURL(id, ActionDecline)
	if err := uc.mailer.SendApprovalRequest(ctx, settings, req, approveURL, declineURL); err != nil {
		metrics.IncMail("failed")
		return fmt.Errorf("send approval mail: %w", err)
	}
	metrics.IncMail("sent")
	return nil
}

func (uc *requestUC) linkURL(id, action string) string {
	return fmt.Sprintf("%s/api/activation-requests/%s/%s-link?token=%s",
		uc.baseURL, id, action, uc.ApprovalToken(id, action))
}

// ApprovalToken derives the email-link token for a request and action.
func (uc *requestUC) ApprovalToken(id, action string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", uc.secret, id, action)))
	return hex.EncodeToString(sum[:])[:32]
}

func (uc *requestUC) VerifyApprovalToken(id, action, token string) bool {
	want := uc.ApprovalToken(id, action)
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}
