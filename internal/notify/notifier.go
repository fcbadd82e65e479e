// Package notify defines how issued one-time codes reach the company.
package notify

import (
	"context"
	"errors"
	"time"
)

// Message is one OTP delivery. ExpiresAt is the last instant the code is accepted.
type Message struct {
	Phone     string
	Code      string
	ExpiresAt time.Time
}

// Notifier delivers a code to its destination. Implementations must honor ctx cancellation.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg Message) error

// Notify calls f.
func (f Func) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Multi fans out to every notifier in order and joins their errors.
type Multi []Notifier

// Notify calls each notifier; all are attempted even if one fails.
func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
