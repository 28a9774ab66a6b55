package service

import (
	"context"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// StreakResult is the outcome of advancing a user's streak state.
type StreakResult struct {
	CurrentStreak int32
	ReverseStreak int32

	// AlreadyCompleted is set when the duplicate guard short-circuited:
	// a completion was already recorded within the trailing 24 hours.
	// Counters are returned unchanged in that case.
	AlreadyCompleted bool
}

// StreakService is the streak/reverse-streak accounting engine.
type StreakService interface {
	// Advance applies one event (completion or non-completion query) at the
	// given instant and returns the resulting counters. A missing user is
	// created implicitly with zero state. When hadCompletion is true and the
	// duplicate guard does not fire, the check-in is appended to the ledger
	// and the counters are persisted.
	Advance(ctx context.Context, telegramID int64, username string, hadCompletion bool, now time.Time) (*StreakResult, error)

	// State returns the user's current counters without mutating anything.
	State(ctx context.Context, telegramID int64) (*entity.User, error)

	// HasCompletedWithin reports whether the user recorded a completion in the
	// trailing 24 hours as of now. The scheduler uses this for suppression.
	HasCompletedWithin(ctx context.Context, telegramID int64, now time.Time) (bool, error)
}
