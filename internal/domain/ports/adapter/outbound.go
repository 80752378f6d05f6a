package adapter

import (
	"context"

	"applecare-activation/internal/domain/model"
)

// Mailer is the hex port for outbound SMTP delivery. Implementations read
// host/credentials from the settings snapshot passed per call, since the
// admin can change them at runtime.
type Mailer interface {
	// SendActivation delivers the tabular activation mail (with the invoice
	// attached when invoicePath is non-empty) to every Apple recipient.
	SendActivation(ctx context.Context, s *model.Settings, r *model.ActivationRequest, invoicePath string) error
	// SendApprovalRequest notifies the approver with approve/decline links.
	SendApprovalRequest(ctx context.Context, s *model.Settings, r *model.ActivationRequest, approveURL, declineURL string) error
}

// TicketClient creates a support ticket for a request and returns the
// provider-assigned ticket id.
type TicketClient interface {
	CreateTicket(ctx context.Context, s *model.Settings, r *model.ActivationRequest) (string, error)
}

// InvoiceGenerator renders the activation invoice PDF and returns the path
// of the written file.
type InvoiceGenerator interface {
	Generate(r *model.ActivationRequest) (string, error)
}
