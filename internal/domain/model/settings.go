package model

import (
	"strings"
	"time"
)

// SettingsID is the fixed key of the singleton configuration row.
const SettingsID = "main_settings"

// Settings is the integration configuration singleton. AppleEmail may hold
// several comma-separated recipients.
type Settings struct {
	ID             string    `json:"id"`
	AppleEmail     string    `json:"apple_email"`
	ApprovalEmail  string    `json:"approval_email"`
	SMTPHost       string    `json:"smtp_host"`
	SMTPPort       int       `json:"smtp_port"`
	SMTPEmail      string    `json:"smtp_email"`
	SMTPPassword   string    `json:"smtp_password"`
	OSTicketURL    string    `json:"osticket_url"`
	OSTicketAPIKey string    `json:"osticket_api_key"`
	PartnerName    string    `json:"partner_name"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultSettings returns the singleton with factory defaults.
func DefaultSettings() *Settings {
	return &Settings{
		ID:        SettingsID,
		SMTPHost:  "smtp.gmail.com",
		SMTPPort:  587,
		UpdatedAt: time.Now(),
	}
}

// AppleRecipients splits the comma-separated recipient list, dropping empties.
func (s *Settings) AppleRecipients() []string {
	parts := strings.Split(s.AppleEmail, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MailConfigured reports whether outbound SMTP can be attempted at all.
func (s *Settings) MailConfigured() bool {
	return s.SMTPEmail != "" && len(s.AppleRecipients()) > 0
}

// TicketConfigured reports whether the ticket-system integration is set up.
func (s *Settings) TicketConfigured() bool {
	return s.OSTicketURL != "" && s.OSTicketAPIKey != ""
}

// SettingsUpdate is a partial overwrite of the singleton; nil fields keep
// their stored values.
type SettingsUpdate struct {
	AppleEmail     *string `json:"apple_email"`
	ApprovalEmail  *string `json:"approval_email"`
	SMTPHost       *string `json:"smtp_host"`
	SMTPPort       *int    `json:"smtp_port"`
	SMTPEmail      *string `json:"smtp_email"`
	SMTPPassword   *string `json:"smtp_password"`
	OSTicketURL    *string `json:"osticket_url"`
	OSTicketAPIKey *string `json:"osticket_api_key"`
	PartnerName    *string `json:"partner_name"`
}

// Apply merges the update into s and bumps UpdatedAt.
func (s *Settings) Apply(u SettingsUpdate) {
	if u.AppleEmail != nil {
		s.AppleEmail = *u.AppleEmail
	}
	if u.ApprovalEmail != nil {
		s.ApprovalEmail = *u.ApprovalEmail
	}
	if u.SMTPHost != nil {
		s.SMTPHost = *u.SMTPHost
	}
	if u.SMTPPort != nil {
		s.SMTPPort = *u.SMTPPort
	}
	if u.SMTPEmail != nil {
		s.SMTPEmail = *u.SMTPEmail
	}
	if u.SMTPPassword != nil {
		s.SMTPPassword = *u.SMTPPassword
	}
	if u.OSTicketURL != nil {
		s.OSTicketURL = *u.OSTicketURL
	}
	if u.OSTicketAPIKey != nil {
		s.OSTicketAPIKey = *u.OSTicketAPIKey
	}
	if u.PartnerName != nil {
		s.PartnerName = *u.PartnerName
	}
	s.UpdatedAt = time.Now()
}
