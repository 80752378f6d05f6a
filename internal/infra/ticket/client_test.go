//go:build !integration

package ticket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/infra/ticket"
)

func testSettings(url string) *model.Settings {
	s := model.DefaultSettings()
	s.OSTicketURL = url
	s.OSTicketAPIKey = "test-key"
	return s
}

func testRequest() *model.ActivationRequest {
	return &model.ActivationRequest{
		ID:             "req-1",
		CustomerName:   "Customer One",
		CustomerEmail:  "customer@example.com",
		CustomerMobile: "9000000002",
		ModelID:        "MQ9T3HN/A",
		SerialNumber:   "FFXXX1234567",
		PlanName:       "AppleCare+ for iPhone",
		PlanPartCode:   "S9527ZM/A",
		DealerName:     "Dealer One",
		DealerMobile:   "9000000001",
	}
}

func TestCreateTicket(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"123456"`))
	}))
	defer srv.Close()

	client := ticket.NewOSTicketClient()
	id, err := client.CreateTicket(context.Background(), testSettings(srv.URL), testRequest())
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if id != "123456" {
		t.Errorf("ticket id = %q, want 123456", id)
	}
	if gotPath != "/api/tickets.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotPayload["email"] != "customer@example.com" {
		t.Errorf("payload email = %v", gotPayload["email"])
	}
	if subj, _ := gotPayload["subject"].(string); !strings.Contains(subj, "FFXXX1234567") {
		t.Errorf("subject = %q, want serial number", subj)
	}
	if msg, _ := gotPayload["message"].(string); !strings.Contains(msg, "Serial Number: FFXXX1234567") {
		t.Errorf("message missing device details: %q", msg)
	}
}

func TestCreateTicketTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`"1"`))
	}))
	defer srv.Close()

	client := ticket.NewOSTicketClient()
	if _, err := client.CreateTicket(context.Background(), testSettings(srv.URL+"/"), testRequest()); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if gotPath != "/api/tickets.json" {
		t.Errorf("path = %q, double slash not collapsed", gotPath)
	}
}

func TestCreateTicketNon201(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := ticket.NewOSTicketClient()
	_, err := client.CreateTicket(context.Background(), testSettings(srv.URL), testRequest())
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "status=401") {
		t.Errorf("err = %v, want status in message", err)
	}
}
