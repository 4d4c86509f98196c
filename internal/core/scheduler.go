package core

// scheduler.go provides background maintenance for the Service.
//
// The session sweeper closes sessions nobody has touched for a while so
// abandoned browser tabs do not accumulate. It is long-running and
// context-aware for graceful shutdown.

import (
	"context"
	"time"
)

// SweepConfig holds configuration for the session sweeper.
// Zero values fall back to the defaults below.
type SweepConfig struct {
	MaxIdle       time.Duration // Idle time before a session is closed (default: 30m)
	CheckInterval time.Duration // How often to sweep (default: MaxIdle/2)
}

const defaultSessionIdle = 30 * time.Minute

func (c SweepConfig) withDefaults() SweepConfig {
	if c.MaxIdle <= 0 {
		c.MaxIdle = defaultSessionIdle
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = c.MaxIdle / 2
	}
	return c
}

// StartSessionSweeper periodically closes idle sessions until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()

	s.logger.Info("session sweeper started",
		"max_idle", cfg.MaxIdle.String(),
		"interval", cfg.CheckInterval.String(),
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(cfg)
		}
	}
}

// runSweep performs one sweep cycle.
func (s *Service) runSweep(cfg SweepConfig) {
	start := time.Now()
	swept := s.SweepIdle(cfg.MaxIdle)
	if swept == 0 {
		return
	}
	s.logger.Info("swept idle sessions",
		"sessions_closed", swept,
		"sessions_open", s.SessionCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
