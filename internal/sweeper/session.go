package sweeper

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/winsznx/cookathon/internal/adapter"
	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/logger"
	"github.com/winsznx/cookathon/internal/session"
)

// SessionSweeperConfig holds configuration for the session sweeper
type SessionSweeperConfig struct {
	// Interval is the time between sweep cycles
	Interval time.Duration
}

// sessionSweeper implements the Sweeper interface for expired-session reaping.
// It only reclaims storage; request-path reads re-check expiry themselves and
// never depend on a sweep having run.
type sessionSweeper struct {
	config    *SessionSweeperConfig
	manager   *session.Manager
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(config *SessionSweeperConfig, manager *session.Manager, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = domain.DEFAULT_SWEEP_INTERVAL
	}
	return &sessionSweeper{
		config:    config,
		manager:   manager,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *sessionSweeper) Name() string {
	return "session-sweeper"
}

// Start begins the sweeper's main loop. A failed sweep is retried with
// exponential backoff instead of waiting out the full interval.
func (s *sessionSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting session sweeper",
		zap.Duration("interval", s.config.Interval),
	)

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = s.config.Interval
	bo.MaxElapsedTime = 0 // keep retrying until stopped

	delay := s.config.Interval
	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Session sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Session sweeper stop requested")
			return nil
		case <-s.clock.After(delay):
			reaped, err := s.manager.Sweep(ctx)
			if err != nil {
				delay = bo.NextBackOff()
				logger.WarnCtx(ctx, "Sweep cycle failed, backing off",
					zap.Error(err),
					zap.Duration("retry_in", delay),
				)
				continue
			}
			bo.Reset()
			delay = s.config.Interval
			if reaped > 0 {
				logger.InfoCtx(ctx, "Reaped expired sessions", zap.Int64("count", reaped))
			}
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *sessionSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Session sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Session sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}
