package notify

import (
	"context"
	"errors"
	"testing"
)

func TestMulti_CallsAllAndJoinsErrors(t *testing.T) {
	var calls []string
	errA := errors.New("a down")
	m := Multi{
		Func(func(_ context.Context, msg Message) error {
			calls = append(calls, "a:"+msg.Code)
			return errA
		}),
		nil,
		Func(func(_ context.Context, msg Message) error {
			calls = append(calls, "b:"+msg.Code)
			return nil
		}),
	}

	err := m.Notify(context.Background(), Message{Phone: "+998901111111", Code: "123456"})
	if !errors.Is(err, errA) {
		t.Errorf("Notify error = %v, want to wrap %v", err, errA)
	}
	if len(calls) != 2 || calls[0] != "a:123456" || calls[1] != "b:123456" {
		t.Errorf("calls = %v, want both notifiers called in order", calls)
	}
}

func TestMulti_Empty(t *testing.T) {
	if err := (Multi{}).Notify(context.Background(), Message{}); err != nil {
		t.Errorf("empty Multi Notify = %v, want nil", err)
	}
}
