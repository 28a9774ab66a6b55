// Package cron drives the periodic reminder and end-of-day scans.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/metrics"
)

// ReminderTicker runs the per-minute reminder scan and the hourly end-of-day
// scan on a cron schedule.
type ReminderTicker struct {
	reminderService  service.ReminderService
	userRepo         repository.UserRepository
	cron             *cron.Cron
	tickInterval     time.Duration
	endOfDayInterval time.Duration
	logger           *zap.SugaredLogger
}

// NewReminderTicker creates a new scheduler ticker.
func NewReminderTicker(
	reminderService service.ReminderService,
	userRepo repository.UserRepository,
	tickInterval, endOfDayInterval time.Duration,
	logger *zap.SugaredLogger,
) *ReminderTicker {
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	if endOfDayInterval <= 0 {
		endOfDayInterval = time.Hour
	}
	return &ReminderTicker{
		reminderService:  reminderService,
		userRepo:         userRepo,
		cron:             cron.New(),
		tickInterval:     tickInterval,
		endOfDayInterval: endOfDayInterval,
		logger:           logger,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (t *ReminderTicker) Start() error {
	tickExpr := fmt.Sprintf("@every %s", t.tickInterval.String())
	if _, err := t.cron.AddFunc(tickExpr, t.runTick); err != nil {
		return fmt.Errorf("failed to add reminder tick job: %w", err)
	}

	eodExpr := fmt.Sprintf("@every %s", t.endOfDayInterval.String())
	if _, err := t.cron.AddFunc(eodExpr, t.runEndOfDay); err != nil {
		return fmt.Errorf("failed to add end-of-day job: %w", err)
	}

	t.cron.Start()
	t.logger.Infow("scheduler started", "tick_interval", t.tickInterval, "end_of_day_interval", t.endOfDayInterval)
	return nil
}

// Stop stops the scheduler and waits for running jobs to drain.
func (t *ReminderTicker) Stop() {
	t.logger.Info("stopping scheduler...")
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("scheduler stopped")
}

func (t *ReminderTicker) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := t.reminderService.ProcessTick(ctx); err != nil {
		t.logger.Errorw("reminder scan failed", "error", err)
	}
}

func (t *ReminderTicker) runEndOfDay() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := t.reminderService.ProcessEndOfDay(ctx); err != nil {
		t.logger.Errorw("end-of-day scan failed", "error", err)
	}

	t.refreshActiveUsers(ctx)
}

// refreshActiveUsers updates the active-user gauges alongside the hourly scan.
func (t *ReminderTicker) refreshActiveUsers(ctx context.Context) {
	now := time.Now().UTC()
	timeframes := map[string]time.Duration{
		"24h": 24 * time.Hour,
		"7d":  7 * 24 * time.Hour,
		"30d": 30 * 24 * time.Hour,
	}

	for label, window := range timeframes {
		count, err := t.userRepo.CountActiveSince(ctx, now.Add(-window))
		if err != nil {
			t.logger.Warnw("failed to count active users", "timeframe", label, "error", err)
			continue
		}
		metrics.ActiveUsers.WithLabelValues(label).Set(float64(count))
	}
}
