package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers the activation and approval mails. Host and
// credentials come from the settings snapshot on every call so admin edits
// take effect without a restart.
type SMTPMailer struct {
	log *zerolog.Logger
}

func NewSMTPMailer(logger *zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{log: logger}
}

func (m *SMTPMailer) SendActivation(ctx context.Context, s *model.Settings, r *model.ActivationRequest, invoicePath string) error {
	body, err := ActivationBody(s, r)
	if err != nil {
		return err
	}
	msg := gomail.NewMsg()
	if err := msg.From(s.SMTPEmail); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(s.AppleRecipients()...); err != nil {
		return fmt.Errorf("to addresses: %w", err)
	}
	msg.Subject(fmt.Sprintf("AppleCare+ Activation Request - %s", r.CustomerName))
	msg.SetBodyString(gomail.TypeTextHTML, body)

	if invoicePath != "" {
		if _, err := os.Stat(invoicePath); err == nil {
			msg.AttachFile(invoicePath, gomail.WithFileName("invoice.pdf"))
		} else {
			m.log.Warn().Str("path", invoicePath).Msg("invoice file missing, sending without attachment")
		}
	}
	return m.send(ctx, s, msg)
}

func (m *SMTPMailer) SendApprovalRequest(ctx context.Context, s *model.Settings, r *model.ActivationRequest, approveURL, declineURL string) error {
	body, err := ApprovalBody(s, r, approveURL, declineURL)
	if err != nil {
		return err
	}
	msg := gomail.NewMsg()
	if err := msg.From(s.SMTPEmail); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(s.ApprovalEmail); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("New Activation Request - %s", r.SerialNumber))
	msg.SetBodyString(gomail.TypeTextHTML, body)
	return m.send(ctx, s, msg)
}

func (m *SMTPMailer) send(ctx context.Context, s *model.Settings, msg *gomail.Msg) error {
	client, err := gomail.NewClient(s.SMTPHost,
		gomail.WithPort(s.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.SMTPEmail),
		gomail.WithPassword(s.SMTPPassword),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// The activation mail reproduces the tabular row format Apple's intake
// process expects, one row per request.
var activationTmpl = template.Must(template.New("activation").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>AppleCare+ Activation Request</h2>
<p>Please find the activation details below:</p>
<table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse;">
  <tr style="background-color: #f2f2f2;">
    <th>IMEI/Serial</th>
    <th>NAME</th>
    <th>EMAIL ID</th>
    <th>MOBILE NO</th>
    <th>Plan Part Code</th>
    <th>Device DOP</th>
    <th>Billing Location</th>
    <th>Payment Type</th>
    <th>Plan Name</th>
    <th>Partner Name</th>
  </tr>
  <tr>
    <td>{{.R.SerialNumber}}</td>
    <td>{{.R.CustomerName}}</td>
    <td>{{.R.CustomerEmail}}</td>
    <td>{{.R.CustomerMobile}}</td>
    <td>{{.R.PlanPartCode}}</td>
    <td>{{.R.DeviceActivationDate}}</td>
    <td>{{.R.BillingLocation}}</td>
    <td>{{.R.PaymentType}}</td>
    <td>{{.R.PlanName}}</td>
    <td>{{.Partner}}</td>
  </tr>
</table>
<br>
<p>Dealer Details:</p>
<ul>
  <li>Dealer Name: {{.R.DealerName}}</li>
  <li>Dealer Mobile: {{.R.DealerMobile}}</li>
  <li>Dealer Email: {{.R.DealerEmail}}</li>
</ul>
<p>Best regards,<br>{{.Partner}}</p>
</body>
</html>`))

func ActivationBody(s *model.Settings, r *model.ActivationRequest) (string, error) {
	partner := s.PartnerName
	if partner == "" {
		partner = "Partner"
	}
	var buf bytes.Buffer
	err := activationTmpl.Execute(&buf, struct {
		R       *model.ActivationRequest
		Partner string
	}{r, partner})
	if err != nil {
		return "", fmt.Errorf("render activation mail: %w", err)
	}
	return buf.String(), nil
}

var approvalTmpl = template.Must(template.New("approval").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>New Activation Request Awaiting Review</h2>
<p>A new AppleCare+ activation request has been submitted:</p>
<ul>
  <li>Customer: {{.R.CustomerName}} ({{.R.CustomerEmail}}, {{.R.CustomerMobile}})</li>
  <li>Device: {{.R.ModelID}} / {{.R.SerialNumber}}</li>
  <li>Plan: {{.R.PlanName}} ({{.R.PlanPartCode}})</li>
  <li>Dealer: {{.R.DealerName}} ({{.R.DealerMobile}})</li>
  <li>Activation Date: {{.R.DeviceActivationDate}}</li>
</ul>
<p>
  <a href="{{.ApproveURL}}" style="padding:10px 16px;background:#057a55;color:#fff;text-decoration:none;border-radius:6px;">Approve</a>
  &nbsp;
  <a href="{{.DeclineURL}}" style="padding:10px 16px;background:#b00020;color:#fff;text-decoration:none;border-radius:6px;">Decline</a>
</p>
<p>Best regards,<br>{{.Partner}}</p>
</body>
</html>`))

func ApprovalBody(s *model.Settings, r *model.ActivationRequest, approveURL, declineURL string) (string, error) {
	partner := s.PartnerName
	if partner == "" {
		partner = "Partner"
	}
	var buf bytes.Buffer
	err := approvalTmpl.Execute(&buf, struct {
		R          *model.ActivationRequest
		ApproveURL string
		DeclineURL string
		Partner    string
	}{r, approveURL, declineURL, partner})
	if err != nil {
		return "", fmt.Errorf("render approval mail: %w", err)
	}
	return buf.String(), nil
}
