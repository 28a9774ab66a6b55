package repository

import (
	"context"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// CheckInRepository defines data access for the append-only check-in ledger.
type CheckInRepository interface {
	// Create appends a check-in event.
	Create(ctx context.Context, checkIn *entity.CheckIn) error

	// GetSince returns a user's check-ins at or after the given instant,
	// oldest first.
	GetSince(ctx context.Context, userID int64, since time.Time) ([]*entity.CheckIn, error)

	// HasCompletionSince reports whether a completed check-in exists at or
	// after the given instant. Backs the rolling-24h duplicate guard.
	HasCompletionSince(ctx context.Context, userID int64, since time.Time) (bool, error)
}
