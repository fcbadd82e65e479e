package loki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
)

type capturedPush struct {
	Streams []struct {
		Stream map[string]string `json:"stream"`
		Values [][]string        `json:"values"`
	} `json:"streams"`
}

func newCaptureClient(t *testing.T, status int) (*Client, *capturedPush) {
	t.Helper()
	var got capturedPush
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pushPath {
			t.Errorf("path = %q, want %q", r.URL.Path, pushPath)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", srv.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, &got
}

func TestEntryFromEvent(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ev := telemetry.NewEvent(7, telemetry.EventOTPSent, map[string]string{"phone": "+99890*****11"})
	ev.CreatedAt = created
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	e := EntryFromEvent(raw, time.Now())
	if !e.Time.Equal(created) {
		t.Errorf("Time = %v, want %v", e.Time, created)
	}
	if e.Labels["event_type"] != telemetry.EventOTPSent || e.Labels["source"] != telemetry.SourceCompanyAuth {
		t.Errorf("Labels = %v", e.Labels)
	}
	if _, ok := e.Labels["company_id"]; ok {
		t.Error("company_id must not become a label")
	}
	if e.Line != string(raw) {
		t.Errorf("Line = %s, want the raw event", e.Line)
	}
}

func TestEntryFromEvent_Undecodable(t *testing.T) {
	received := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	e := EntryFromEvent([]byte("not json"), received)
	if e.Line != "not json" || !e.Time.Equal(received) || len(e.Labels) != 0 {
		t.Errorf("EntryFromEvent = %+v", e)
	}
}

func TestPush_GroupsStreamsByLabels(t *testing.T) {
	c, got := newCaptureClient(t, http.StatusNoContent)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	err := c.Push(context.Background(),
		Entry{Time: at, Line: "a", Labels: map[string]string{"event_type": "otp_sent"}},
		Entry{Time: at.Add(time.Second), Line: "b", Labels: map[string]string{"event_type": "otp_verified"}},
		Entry{Time: at.Add(2 * time.Second), Line: "c", Labels: map[string]string{"event_type": "otp_sent"}},
	)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(got.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(got.Streams))
	}
	first := got.Streams[0]
	if first.Stream["job"] != JobLabel || first.Stream["event_type"] != "otp_sent" {
		t.Errorf("first stream labels = %v", first.Stream)
	}
	if len(first.Values) != 2 || first.Values[0][1] != "a" || first.Values[1][1] != "c" {
		t.Errorf("first stream values = %v", first.Values)
	}
	if want := strconv.FormatInt(at.UnixNano(), 10); first.Values[0][0] != want {
		t.Errorf("timestamp = %s, want %s", first.Values[0][0], want)
	}
}

func TestPush_SanitizesLabels(t *testing.T) {
	c, got := newCaptureClient(t, http.StatusNoContent)
	err := c.Push(context.Background(), Entry{Time: time.Now(), Line: "x", Labels: map[string]string{"source": " a b/c ", "blank": "  "}})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	labels := got.Streams[0].Stream
	if labels["source"] != "a_b_c" {
		t.Errorf("source = %q, want a_b_c", labels["source"])
	}
	if _, ok := labels["blank"]; ok {
		t.Error("blank label should be dropped")
	}
}

func TestPush_NonSuccessStatus(t *testing.T) {
	c, _ := newCaptureClient(t, http.StatusBadRequest)
	if err := c.Push(context.Background(), Entry{Time: time.Now(), Line: "x"}); err == nil {
		t.Error("expected error for 400 response")
	}
}

func TestPush_NoEntries(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.Push(context.Background()); err != nil {
		t.Errorf("Push() with no entries = %v, want nil", err)
	}
}

func TestNewClient_EmptyBaseURL(t *testing.T) {
	if _, err := NewClient("  ", nil); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("NewClient error = %v, want ErrNoBaseURL", err)
	}
}
