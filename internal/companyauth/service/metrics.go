package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome attribute values recorded on the counters.
const (
	outcomeSent         = "sent"
	outcomeNotifyFailed = "notify_failed"
	outcomeRateLimited  = "rate_limited"
	outcomeVerified     = "verified"
	outcomeInvalid      = "invalid"
	outcomeExpired      = "expired"
)

// Metrics holds the counters of the company auth flow. A nil *Metrics records nothing.
type Metrics struct {
	issued   metric.Int64Counter
	verified metric.Int64Counter
	tokens   metric.Int64Counter
}

// NewMetrics creates the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	issued, err := meter.Int64Counter("staffflow_otp_issue_total",
		metric.WithDescription("OTP issuance attempts by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create otp issue counter: %w", err)
	}
	verified, err := meter.Int64Counter("staffflow_otp_verify_total",
		metric.WithDescription("OTP verification attempts by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create otp verify counter: %w", err)
	}
	tokens, err := meter.Int64Counter("staffflow_company_token_created_total",
		metric.WithDescription("Company access tokens created."))
	if err != nil {
		return nil, fmt.Errorf("create token counter: %w", err)
	}
	return &Metrics{issued: issued, verified: verified, tokens: tokens}, nil
}

func (m *Metrics) issue(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) verify(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.verified.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) tokenCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.tokens.Add(ctx, 1)
}
