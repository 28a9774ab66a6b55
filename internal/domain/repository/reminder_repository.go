package repository

import (
	"context"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// ReminderRepository defines data access for reminder slots and the
// sent-reminder log.
type ReminderRepository interface {
	// GetTimes returns a user's reminder slots. Order-insignificant, unique.
	GetTimes(ctx context.Context, userID int64) ([]entity.TimeOfDay, error)

	// SetTimes replaces a user's reminder slots.
	SetTimes(ctx context.Context, userID int64, times []entity.TimeOfDay) error

	// AddTime appends one slot; adding an existing slot is a no-op.
	AddTime(ctx context.Context, userID int64, slot entity.TimeOfDay) error

	// DeleteTime removes one slot, reporting whether it existed.
	DeleteTime(ctx context.Context, userID int64, slot entity.TimeOfDay) (bool, error)

	// RecordSent logs that a reminder for the slot went out at the given instant.
	RecordSent(ctx context.Context, userID int64, slot entity.TimeOfDay, sentAt time.Time) error

	// GetSentSince returns sent-reminder records at or after the cutoff.
	// The caller passes the subject-local midnight to scope to "today".
	GetSentSince(ctx context.Context, userID int64, cutoff time.Time) ([]*entity.SentReminder, error)
}
