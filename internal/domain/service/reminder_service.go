package service

import (
	"context"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// ReminderService owns reminder slots and the per-tick due decision.
type ReminderService interface {
	// SetReminder parses "HH:MM" and adds it to the user's slots.
	SetReminder(ctx context.Context, telegramID int64, timeOfDay string) (entity.TimeOfDay, error)

	// ReplaceReminders parses and replaces the user's whole slot set.
	ReplaceReminders(ctx context.Context, telegramID int64, times []string) ([]entity.TimeOfDay, error)

	// ListReminders returns the user's slots formatted as "HH:MM", sorted.
	ListReminders(ctx context.Context, telegramID int64) ([]string, error)

	// DeleteReminder removes one slot, reporting whether it existed.
	DeleteReminder(ctx context.Context, telegramID int64, timeOfDay string) (bool, error)

	// IsDue decides whether a reminder should go out for one user at one
	// instant: exact slot match, not already sent for that slot today, and
	// the task not already completed.
	IsDue(ctx context.Context, user *entity.User, nowLocal time.Time) (bool, entity.TimeOfDay, error)

	// ProcessTick runs the per-minute scan over all users with reminder
	// slots, dispatching due reminders. Per-user failures are isolated.
	ProcessTick(ctx context.Context) error

	// ProcessEndOfDay runs the hourly scan sending one streak-at-risk or
	// inactivity notice to users inside their local end-of-day window who
	// have not completed today's task.
	ProcessEndOfDay(ctx context.Context) error
}
