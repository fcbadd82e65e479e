package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify"
)

var _ notify.Notifier = (*SMSLocalClient)(nil)

func TestNewSMSLocalClient_Defaults(t *testing.T) {
	client := NewSMSLocalClient("api-key", "", "")
	if client.BaseURL != "https://app.smslocal.in/api/smsapi" {
		t.Errorf("BaseURL = %q, want default", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should be set")
	}
	if client.HTTPClient.Timeout != defaultTimeout {
		t.Errorf("HTTPClient.Timeout = %v, want %v", client.HTTPClient.Timeout, defaultTimeout)
	}
}

func TestNotify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want %q", r.Method, http.MethodPost)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "test-api-key" {
			t.Errorf("Authorization = %q, want test-api-key", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode body: %v", err)
		}
		if body["route"] != "otp" {
			t.Errorf("route = %v, want otp", body["route"])
		}
		if body["numbers"] != "998901111111" {
			t.Errorf("numbers = %v, want 998901111111", body["numbers"])
		}
		if body["variables"] != "123456" {
			t.Errorf("variables = %v, want 123456", body["variables"])
		}
		if body["sender_id"] != "STAFF" {
			t.Errorf("sender_id = %v, want STAFF", body["sender_id"])
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := NewSMSLocalClient("test-api-key", server.URL, "STAFF")
	err := client.Notify(context.Background(), notify.Message{Phone: "+998901111111", Code: "123456", ExpiresAt: time.Now()})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

func TestNotify_MissingAPIKey(t *testing.T) {
	client := NewSMSLocalClient("", "", "")
	if err := client.Notify(context.Background(), notify.Message{Phone: "1", Code: "123456"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNotify_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid number"}`))
	}))
	defer server.Close()

	client := NewSMSLocalClient("k", server.URL, "")
	err := client.Notify(context.Background(), notify.Message{Phone: "1", Code: "123456"})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "status=400") || !strings.Contains(err.Error(), "invalid number") {
		t.Errorf("error = %q, should include status and body", err.Error())
	}
}

func TestNotify_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewSMSLocalClient("k", server.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := client.Notify(ctx, notify.Message{Phone: "1", Code: "123456"}); err == nil {
		t.Fatal("expected error when context deadline passes")
	}
}
