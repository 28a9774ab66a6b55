package repository

import (
	"context"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// UserRepository defines data access for bot subjects and their streak state.
type UserRepository interface {
	// GetByTelegramID retrieves a user, returning entity.ErrUserNotFound when absent.
	GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error)

	// Create inserts a new user with zero streak state.
	Create(ctx context.Context, user *entity.User) error

	// UpdateStreak persists new streak counters and the last check-in instant.
	UpdateStreak(ctx context.Context, telegramID int64, currentStreak, reverseStreak int32, lastCheckIn *time.Time) error

	// UpdateTimezone sets the user's IANA timezone name.
	UpdateTimezone(ctx context.Context, telegramID int64, timezone string) error

	// UpdateLanguage sets the user's message language ("en" or "ar").
	UpdateLanguage(ctx context.Context, telegramID int64, language string) error

	// GetUsersWithReminders returns users having at least one reminder slot.
	GetUsersWithReminders(ctx context.Context) ([]*entity.User, error)

	// GetAll returns every user; used by the end-of-day scan.
	GetAll(ctx context.Context) ([]*entity.User, error)

	// CountActiveSince counts users whose last check-in is at or after the cutoff.
	CountActiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}
