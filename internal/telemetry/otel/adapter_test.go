package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
)

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("NewEventEmitter(nil) returned nil")
	}
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("noop Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), telemetry.NewEvent(1, telemetry.EventOTPSent, nil)); err != nil {
		t.Errorf("noop Emit(ctx, event): %v", err)
	}
}

func TestEmit_WithSDKProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), telemetry.NewEvent(1, telemetry.EventOTPSent, nil)); err != nil {
		t.Errorf("Emit(ctx, event): %v", err)
	}
}

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
}

func attrsOf(rec otellog.Record) map[string]otellog.Value {
	attrs := make(map[string]otellog.Value)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	return attrs
}

func TestEmit_AttributeAndBodyMapping(t *testing.T) {
	rc := &recordCapture{}
	em := NewEventEmitterWithLogger(rc)
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	event := &telemetry.Event{
		ID:        "ev-1",
		CompanyID: 42,
		EventType: telemetry.EventOTPVerified,
		Source:    telemetry.SourceCompanyAuth,
		Metadata:  []byte(`{"key":"value"}`),
		CreatedAt: created,
	}
	if err := em.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := rc.rec

	if got := rec.Body().AsBytes(); string(got) != `{"key":"value"}` {
		t.Errorf("body = %q, want %q", got, event.Metadata)
	}
	if !rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), created)
	}
	attrs := attrsOf(rec)
	if attrs["event_id"].AsString() != "ev-1" {
		t.Errorf("event_id = %q", attrs["event_id"].AsString())
	}
	if attrs["company_id"].AsInt64() != 42 {
		t.Errorf("company_id = %d, want 42", attrs["company_id"].AsInt64())
	}
	if attrs["event_type"].AsString() != telemetry.EventOTPVerified {
		t.Errorf("event_type = %q", attrs["event_type"].AsString())
	}
	if attrs["source"].AsString() != telemetry.SourceCompanyAuth {
		t.Errorf("source = %q", attrs["source"].AsString())
	}
}

func TestEmit_EmptyFields_NotAdded(t *testing.T) {
	rc := &recordCapture{}
	em := NewEventEmitterWithLogger(rc)
	if err := em.Emit(context.Background(), &telemetry.Event{EventType: "ping"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := rc.rec
	if !rec.Body().Empty() {
		t.Error("body should be empty when metadata is nil")
	}
	attrs := attrsOf(rec)
	if _, ok := attrs["company_id"]; ok {
		t.Error("company_id should not be set for zero company")
	}
	if _, ok := attrs["source"]; ok {
		t.Error("source should not be set when empty")
	}
	if attrs["event_type"].AsString() != "ping" {
		t.Errorf("event_type = %q, want ping", attrs["event_type"].AsString())
	}
}

func TestEmit_ZeroTimestamp_SetsCurrentTime(t *testing.T) {
	rc := &recordCapture{}
	em := NewEventEmitterWithLogger(rc)
	before := time.Now().UTC()
	if err := em.Emit(context.Background(), &telemetry.Event{EventType: "test"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	after := time.Now().UTC()
	ts := rc.rec.Timestamp()
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp = %v, should be between %v and %v", ts, before, after)
	}
}
