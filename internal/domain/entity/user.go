package entity

import (
	"time"
)

// Language codes supported by message templates.
const (
	LanguageEnglish = "en"
	LanguageArabic  = "ar"
)

// User represents a bot subject identified by their Telegram id.
type User struct {
	TelegramID int64
	Username   string
	FirstName  string

	// Language is "en" or "ar"; empty means Arabic (the bot default).
	Language string

	// Timezone is an IANA zone name; empty falls back to the configured default.
	Timezone string

	// Streak state. At most one of CurrentStreak/ReverseStreak is non-zero.
	CurrentStreak int32
	ReverseStreak int32
	LastCheckIn   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LanguageOrDefault normalizes the language preference.
func (u *User) LanguageOrDefault() string {
	if u.Language == LanguageEnglish {
		return LanguageEnglish
	}
	return LanguageArabic
}
