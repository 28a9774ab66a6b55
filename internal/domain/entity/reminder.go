package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EndOfDaySlot is the reserved reminder slot used to dedup the once-per-day
// end-of-day warning in the sent-reminder log.
var EndOfDaySlot = TimeOfDay{Hour: 23, Minute: 59}

// TimeOfDay is a reminder slot with minute granularity, no seconds.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24-hour format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the slot as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Matches reports whether the instant's local (hour, minute) exactly equals
// this slot. No tolerance window.
func (t TimeOfDay) Matches(at time.Time) bool {
	return at.Hour() == t.Hour && at.Minute() == t.Minute
}

// SentReminder records that a reminder for a given slot went out, preventing
// a second send for the same slot within one calendar day.
type SentReminder struct {
	UserID    int64
	Slot      TimeOfDay
	SentAt    time.Time
	CreatedAt time.Time
}
