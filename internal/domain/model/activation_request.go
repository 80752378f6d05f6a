package model

import (
	"net/mail"
	"time"

	"applecare-activation/internal/domain"

	"github.com/google/uuid"
)

// Request status values. There is no enforced transition graph: the admin
// dashboard may set any member of the set. Approve/decline are the one
// exception and only act on a request that is still awaiting review.
const (
	StatusPendingApproval = "pending_approval"
	StatusPending         = "pending"
	StatusEmailSent       = "email_sent"
	StatusPaymentPending  = "payment_pending"
	StatusActivated       = "activated"
	StatusCancelled       = "cancelled"
	StatusDeclined        = "declined"
)

// Defaults stamped onto every submission. The upstream Apple intake sheet
// expects these literal values for partner-billed activations.
const (
	DefaultBillingLocation = "F9B4869273B7"
	DefaultPaymentType     = "Insta"
)

var requestStatuses = map[string]struct{}{
	StatusPendingApproval: {},
	StatusPending:         {},
	StatusEmailSent:       {},
	StatusPaymentPending:  {},
	StatusActivated:       {},
	StatusCancelled:       {},
	StatusDeclined:        {},
}

// ValidStatus reports whether s is a member of the closed status set.
func ValidStatus(s string) bool {
	_, ok := requestStatuses[s]
	return ok
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ActivationRequest is one submitted intake form. Plan name and part code
// are snapshotted at creation so later plan edits do not rewrite history.
type ActivationRequest struct {
	ID                   string    `json:"id"`
	DealerName           string    `json:"dealer_name"`
	DealerMobile         string    `json:"dealer_mobile"`
	DealerEmail          string    `json:"dealer_email"`
	CustomerName         string    `json:"customer_name"`
	CustomerMobile       string    `json:"customer_mobile"`
	CustomerEmail        string    `json:"customer_email"`
	ModelID              string    `json:"model_id"`
	SerialNumber         string    `json:"serial_number"`
	PlanID               string    `json:"plan_id"`
	PlanName             string    `json:"plan_name"`
	PlanPartCode         string    `json:"plan_part_code"`
	DeviceActivationDate string    `json:"device_activation_date"`
	BillingLocation      string    `json:"billing_location"`
	PaymentType          string    `json:"payment_type"`
	InvoicePath          string    `json:"invoice_path,omitempty"`
	Status               string    `json:"status"`
	OSTicketID           string    `json:"osticket_id,omitempty"`
	EmailSent            bool      `json:"email_sent"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (r *ActivationRequest) IsZero() bool { return r == nil || r.ID == "" }

// NewRequestInput carries the raw intake-form fields.
type NewRequestInput struct {
	DealerName           string `json:"dealer_name"`
	DealerMobile         string `json:"dealer_mobile"`
	DealerEmail          string `json:"dealer_email"`
	CustomerName         string `json:"customer_name"`
	CustomerMobile       string `json:"customer_mobile"`
	CustomerEmail        string `json:"customer_email"`
	ModelID              string `json:"model_id"`
	SerialNumber         string `json:"serial_number"`
	PlanID               string `json:"plan_id"`
	DeviceActivationDate string `json:"device_activation_date"`
	BillingLocation      string `json:"billing_location"`
	PaymentType          string `json:"payment_type"`
}

// NewActivationRequest validates the input and constructs a request in the
// pending_approval state with the plan snapshot applied.
func NewActivationRequest(in NewRequestInput, plan *Plan) (*ActivationRequest, error) {
	if in.DealerName == "" || in.DealerMobile == "" ||
		in.CustomerName == "" || in.CustomerMobile == "" ||
		in.ModelID == "" || in.SerialNumber == "" || in.DeviceActivationDate == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !validEmail(in.DealerEmail) || !validEmail(in.CustomerEmail) {
		return nil, domain.ErrInvalidArgument
	}
	if plan.IsZero() {
		return nil, domain.ErrInvalidPlan
	}
	billing := in.BillingLocation
	if billing == "" {
		billing = DefaultBillingLocation
	}
	payment := in.PaymentType
	if payment == "" {
		payment = DefaultPaymentType
	}
	now := time.Now()
	return &ActivationRequest{
		ID:                   uuid.NewString(),
		DealerName:           in.DealerName,
		DealerMobile:         in.DealerMobile,
		DealerEmail:          in.DealerEmail,
		CustomerName:         in.CustomerName,
		CustomerMobile:       in.CustomerMobile,
		CustomerEmail:        in.CustomerEmail,
		ModelID:              in.ModelID,
		SerialNumber:         in.SerialNumber,
		PlanID:               plan.ID,
		PlanName:             plan.Name,
		PlanPartCode:         plan.PartCode,
		DeviceActivationDate: in.DeviceActivationDate,
		BillingLocation:      billing,
		PaymentType:          payment,
		Status:               StatusPendingApproval,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}
