package service

import (
	"context"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
)

// MessageService selects localized reward/warning copy by streak bucket.
type MessageService interface {
	// Threshold maps a day count onto the largest configured bucket not
	// exceeding it. Reward buckets are {1,7,30}; warning buckets {1,3,5,7,30}.
	Threshold(days int32, isReward bool) int32

	// StreakMessage builds the full status message for a user: streak header
	// plus a template chosen at the matching bucket.
	StreakMessage(ctx context.Context, user *entity.User) string

	// ReminderMessage builds the scheduled-reminder copy for a user.
	ReminderMessage(ctx context.Context, user *entity.User) string

	// EndOfDayMessage builds the streak-break warning (currentStreak > 0) or
	// inactivity notice (reverseStreak > 0). Empty when neither applies.
	EndOfDayMessage(ctx context.Context, user *entity.User) string
}
