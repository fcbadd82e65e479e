// Package sweeper periodically purges expired one-time codes.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/logging"
)

// Purger deletes credentials created before cutoff. Implemented by the OTP repository.
type Purger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper removes codes older than TTL every Interval.
type Sweeper struct {
	purger   Purger
	ttl      time.Duration
	interval time.Duration
	log      *slog.Logger
	nowF     func() time.Time
}

// New returns a Sweeper. log may be nil.
func New(purger Purger, ttl, interval time.Duration, log *slog.Logger) *Sweeper {
	return &Sweeper{
		purger:   purger,
		ttl:      ttl,
		interval: interval,
		log:      logging.OrDiscard(log),
		nowF:     time.Now,
	}
}

// SetNow overrides the clock. For tests.
func (s *Sweeper) SetNow(f func() time.Time) {
	s.nowF = f
}

// RunOnce purges once and returns the number of rows removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.nowF().Add(-s.ttl)
	n, err := s.purger.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "otp sweep failed", "error", err)
		return 0, err
	}
	if n > 0 {
		s.log.InfoContext(ctx, "otp sweep", "purged", n)
	}
	return n, nil
}

// Run sweeps every interval until ctx is done. Errors are logged and the loop continues.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}
