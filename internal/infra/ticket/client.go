package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/adapter"
)

var _ adapter.TicketClient = (*OSTicketClient)(nil)

// OSTicketClient opens a support ticket per activation request via the
// osTicket JSON API. The endpoint and API key live in settings.
type OSTicketClient struct {
	client *http.Client
}

func NewOSTicketClient() *OSTicketClient {
	return &OSTicketClient{client: &http.Client{Timeout: 15 * time.Second}}
}

func (c *OSTicketClient) CreateTicket(ctx context.Context, s *model.Settings, r *model.ActivationRequest) (string, error) {
	payload := map[string]interface{}{
		"name":    r.CustomerName,
		"email":   r.CustomerEmail,
		"phone":   r.CustomerMobile,
		"subject": fmt.Sprintf("AppleCare+ Activation - %s", r.SerialNumber),
		"message": ticketMessage(r),
		"topicId": "1",
	}
	b, _ := json.Marshal(payload)

	url := strings.TrimRight(s.OSTicketURL, "/") + "/api/tickets.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-Key", s.OSTicketAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("ticket creation failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	// osTicket returns the new ticket number as a bare JSON string.
	return strings.Trim(strings.TrimSpace(string(body)), `"`), nil
}

func ticketMessage(r *model.ActivationRequest) string {
	return fmt.Sprintf(`AppleCare+ Activation Request

Customer Details:
- Name: %s
- Email: %s
- Mobile: %s

Device Details:
- Model ID: %s
- Serial Number: %s
- Activation Date: %s

Plan: %s (%s)

Dealer: %s (%s)`,
		r.CustomerName, r.CustomerEmail, r.CustomerMobile,
		r.ModelID, r.SerialNumber, r.DeviceActivationDate,
		r.PlanName, r.PlanPartCode,
		r.DealerName, r.DealerMobile,
	)
}
