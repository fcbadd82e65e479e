package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the company auth flow.
const (
	EventOTPSent       = "otp_sent"
	EventOTPSendFailed = "otp_send_failed"
	EventOTPVerified   = "otp_verified"
	EventOTPRejected   = "otp_rejected"
	EventTokenIssued   = "token_issued"
)

// SourceCompanyAuth is the Source of every event produced by this service.
const SourceCompanyAuth = "company-auth"

// Event is a company-scoped audit/telemetry event. Serialized as JSON onto Kafka and OTel logs.
// Metadata must never carry a plain OTP or token secret.
type Event struct {
	ID        string          `json:"id"`
	CompanyID int64           `json:"companyId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent returns an event with a fresh ID and the current UTC time. metadata may be nil.
func NewEvent(companyID int64, eventType string, metadata map[string]string) *Event {
	ev := &Event{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		EventType: eventType,
		Source:    SourceCompanyAuth,
		CreatedAt: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			ev.Metadata = raw
		}
	}
	return ev
}

// EventEmitter emits events (e.g. to Kafka or OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// MultiEmitter fans an event out to several emitters and joins their errors.
type MultiEmitter []EventEmitter

// Emit calls every non-nil emitter.
func (m MultiEmitter) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
