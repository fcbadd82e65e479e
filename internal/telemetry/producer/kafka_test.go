package producer

import (
	"context"
	"testing"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/telemetry"
)

var _ Producer = (*KafkaProducer)(nil)

func TestNewKafkaProducer_DisabledWithoutBrokersOrTopic(t *testing.T) {
	for _, tc := range []struct {
		name    string
		brokers []string
		topic   string
	}{
		{"no brokers", nil, "events"},
		{"no topic", []string{"localhost:9092"}, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewKafkaProducer(tc.brokers, tc.topic)
			if err != nil {
				t.Fatalf("NewKafkaProducer: %v", err)
			}
			if p != nil {
				t.Fatalf("producer = %v, want nil", p)
			}
		})
	}
}

func TestKafkaProducer_NilIsNoop(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), telemetry.NewEvent(1, telemetry.EventOTPSent, nil)); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestNewKafkaProducer_Configured(t *testing.T) {
	p, err := NewKafkaProducer([]string{"localhost:9092"}, "staffflow-company-auth")
	if err != nil {
		t.Fatalf("NewKafkaProducer: %v", err)
	}
	if p == nil || p.writer == nil {
		t.Fatal("expected configured producer")
	}
	if p.writer.Topic != "staffflow-company-auth" {
		t.Errorf("Topic = %q, want staffflow-company-auth", p.writer.Topic)
	}
	if err := p.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil event): %v", err)
	}
	_ = p.Close()
}

func TestMessageKey(t *testing.T) {
	if k := messageKey(&telemetry.Event{CompanyID: 42}); string(k) != "42" {
		t.Errorf("messageKey = %q, want 42", k)
	}
	if k := messageKey(&telemetry.Event{}); k != nil {
		t.Errorf("messageKey = %q, want nil", k)
	}
}
