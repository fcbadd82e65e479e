package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakePurger) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestRunOnce_UsesTTLCutoff(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &fakePurger{n: 2}
	s := New(p, 5*time.Minute, time.Minute, nil)
	s.SetNow(func() time.Time { return now })

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 2 {
		t.Errorf("RunOnce = %d, want 2", n)
	}
	if want := now.Add(-5 * time.Minute); !p.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", p.cutoffs[0], want)
	}
}

func TestRunOnce_Error(t *testing.T) {
	p := &fakePurger{err: errors.New("db down")}
	s := New(p, 5*time.Minute, time.Minute, nil)
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_DisabledWhenIntervalZero(t *testing.T) {
	p := &fakePurger{}
	s := New(p, 5*time.Minute, 0, nil)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run with zero interval should return immediately")
	}
	if p.calls() != 0 {
		t.Errorf("calls = %d, want 0", p.calls())
	}
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	p := &fakePurger{}
	s := New(p, 5*time.Minute, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for p.calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if p.calls() < 2 {
		t.Errorf("calls = %d, want >= 2", p.calls())
	}
}
