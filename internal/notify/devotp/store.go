// Package devotp captures plain OTP codes in memory by phone, used only when dev OTP mode is enabled
// (GET /dev/company-auth/otp). Never wired in production.
package devotp

import (
	"context"
	"sync"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/notify"
)

// Store holds the latest plain OTP per phone for dev-only retrieval.
type Store interface {
	// Put stores otp for phone until expiresAt, replacing any earlier code.
	Put(ctx context.Context, phone, otp string, expiresAt time.Time)
	// Get returns the otp for phone if present and not expired. Returns ok false if missing or expired.
	Get(ctx context.Context, phone string) (otp string, ok bool)
}

type entry struct {
	otp       string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put stores otp for phone until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, phone, otp string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[phone] = entry{otp: otp, expiresAt: expiresAt}
}

// Get returns the otp for phone if present and not past expiresAt.
func (s *MemoryStore) Get(ctx context.Context, phone string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[phone]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if s.nowF().After(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.m[phone]; ok && cur == e {
			delete(s.m, phone)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.otp, true
}

// Notifier records every message in a Store instead of delivering it.
type Notifier struct {
	Store Store
}

// NewNotifier returns a Notifier writing to store.
func NewNotifier(store Store) *Notifier {
	return &Notifier{Store: store}
}

// Notify stores msg.Code under msg.Phone. Never fails.
func (n *Notifier) Notify(ctx context.Context, msg notify.Message) error {
	n.Store.Put(ctx, msg.Phone, msg.Code, msg.ExpiresAt)
	return nil
}
