package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the same full three-collection refresh used at startup on a
// fixed interval. Stop tears the recurring task down; nothing leaks past the
// process's authenticated lifetime.
type Scheduler struct {
	c      *cron.Cron
	sync   *Synchronizer
	logger *zap.Logger
}

func NewScheduler(s *Synchronizer, logger *zap.Logger) *Scheduler {
	return &Scheduler{c: cron.New(), sync: s, logger: logger}
}

// Start registers the periodic refresh and launches the cron loop.
func (s *Scheduler) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.c.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	s.logger.Info("sync scheduler started", zap.Duration("interval", interval))
	s.c.Start()
	return nil
}

// run executes a single scheduled refresh. RefreshAll writes the operational
// log entry itself, so only failures are reported here.
func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.sync.RefreshAll(ctx); err != nil {
		s.logger.Warn("scheduled refresh finished with errors", zap.Error(err))
	}
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
	s.logger.Info("sync scheduler stopped")
}
