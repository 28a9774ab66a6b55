package entity

import "time"

// NotificationKind labels why a message is being sent.
type NotificationKind string

const (
	NotificationKindReminder    NotificationKind = "reminder"
	NotificationKindStreak      NotificationKind = "streak"
	NotificationKindEndOfDay    NotificationKind = "end_of_day"
	NotificationKindCheckIn     NotificationKind = "check_in_reply"
	NotificationKindTafsirReply NotificationKind = "tafsir_reply"
)

// Notification is an outbound "deliver text to recipient X" event. The chat
// transport consuming these is outside this service.
type Notification struct {
	EventID   string           `json:"event_id"`
	ChatID    int64            `json:"chat_id"`
	Text      string           `json:"text"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
}
