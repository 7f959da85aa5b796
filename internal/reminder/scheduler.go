package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"inkflow/internal/logging"
)

// Scheduler runs the reminder check periodically
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   *Checker
	interval  time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that runs checker every interval
func NewScheduler(checker *Checker, interval time.Duration, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	s := gocron.NewScheduler(loc)
	// a slow check must not overlap the next one
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		checker:   checker,
		interval:  interval,
		logger:    logging.OrDiscard(logger),
	}
}

// Start schedules the check and returns without blocking. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).Do(s.run, ctx)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder check: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", "interval", s.interval)
	return nil
}

// Stop terminates the scheduled check
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sent, err := s.checker.Check(ctx)
	if err != nil {
		s.logger.Error("reminder check failed", "sent", sent, "error", err)
		return
	}
	if sent > 0 {
		s.logger.Info("reminders sent", "count", sent)
	}
}
