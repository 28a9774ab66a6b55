package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/logger"
)

func newMessageFixture(templates ...*entity.MessageTemplate) *messageService {
	svc := NewMessageService(&fakeTemplateRepo{templates: templates}, logger.NewNop()).(*messageService)
	svc.pick = func(int) int { return 0 }
	return svc
}

func TestThreshold_RewardBuckets(t *testing.T) {
	svc := newMessageFixture()

	cases := []struct {
		days int32
		want int32
	}{
		{1, 1},
		{2, 1},
		{6, 1},
		{7, 7},
		{10, 7},
		{29, 7},
		{30, 30},
		{100, 30},
	}
	for _, tc := range cases {
		if got := svc.Threshold(tc.days, true); got != tc.want {
			t.Errorf("Threshold(%d, reward): expected %d, got %d", tc.days, tc.want, got)
		}
	}
}

func TestThreshold_WarningBuckets(t *testing.T) {
	svc := newMessageFixture()

	cases := []struct {
		days int32
		want int32
	}{
		{1, 1},
		{2, 1},
		{3, 3},
		{4, 3},
		{5, 5},
		{6, 5},
		{7, 7},
		{10, 7},
		{30, 30},
		{365, 30},
	}
	for _, tc := range cases {
		if got := svc.Threshold(tc.days, false); got != tc.want {
			t.Errorf("Threshold(%d, warning): expected %d, got %d", tc.days, tc.want, got)
		}
	}
}

func TestStreakMessage_UsesExactBucketTemplate(t *testing.T) {
	svc := newMessageFixture(
		&entity.MessageTemplate{
			Type:          entity.TemplateTypeReward,
			ThresholdDays: 7,
			TextEnglish:   "A full week of reading!",
			TextArabic:    "أسبوع كامل من القراءة!",
		},
	)
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish, CurrentStreak: 9}

	msg := svc.StreakMessage(context.Background(), user)
	if !strings.Contains(msg, "A full week of reading!") {
		t.Errorf("expected 7-day template body, got %q", msg)
	}
	if !strings.Contains(msg, "9") {
		t.Errorf("expected streak count in header, got %q", msg)
	}
}

func TestStreakMessage_FallsBackToAnyOfType(t *testing.T) {
	// No template at bucket 30; one exists at bucket 1.
	svc := newMessageFixture(
		&entity.MessageTemplate{
			Type:          entity.TemplateTypeReward,
			ThresholdDays: 1,
			TextEnglish:   "Keep it up!",
		},
	)
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish, CurrentStreak: 45}

	msg := svc.StreakMessage(context.Background(), user)
	if !strings.Contains(msg, "Keep it up!") {
		t.Errorf("expected any-of-type fallback body, got %q", msg)
	}
}

func TestStreakMessage_HardcodedFallbackWhenNoTemplates(t *testing.T) {
	svc := newMessageFixture()
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish, CurrentStreak: 3}

	msg := svc.StreakMessage(context.Background(), user)
	if msg == "" {
		t.Fatal("expected a non-empty fallback message")
	}
	if !strings.Contains(msg, "3 days") {
		t.Errorf("expected fallback to mention the streak, got %q", msg)
	}
}

func TestStreakMessage_WarningForReverseStreak(t *testing.T) {
	svc := newMessageFixture(
		&entity.MessageTemplate{
			Type:          entity.TemplateTypeWarning,
			ThresholdDays: 3,
			TextEnglish:   "Three days away.",
		},
	)
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish, ReverseStreak: 4}

	msg := svc.StreakMessage(context.Background(), user)
	if !strings.Contains(msg, "Three days away.") {
		t.Errorf("expected 3-day warning body, got %q", msg)
	}
}

func TestStreakMessage_DefaultsToArabic(t *testing.T) {
	svc := newMessageFixture(
		&entity.MessageTemplate{
			Type:          entity.TemplateTypeReward,
			ThresholdDays: 1,
			TextEnglish:   "english body",
			TextArabic:    "نص عربي",
		},
	)
	user := &entity.User{TelegramID: 1, CurrentStreak: 1} // no language set

	msg := svc.StreakMessage(context.Background(), user)
	if !strings.Contains(msg, "نص عربي") {
		t.Errorf("expected Arabic body for unset language, got %q", msg)
	}
	if strings.Contains(msg, "english body") {
		t.Errorf("unexpected English body, got %q", msg)
	}
}

func TestEndOfDayMessage_StreakBreakWarning(t *testing.T) {
	svc := newMessageFixture()
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish, CurrentStreak: 12}

	msg := svc.EndOfDayMessage(context.Background(), user)
	if !strings.Contains(msg, "Streak Break Alert") {
		t.Errorf("expected streak-break header, got %q", msg)
	}
	if !strings.Contains(msg, "12-day streak") {
		t.Errorf("expected streak length in call to action, got %q", msg)
	}
}

func TestEndOfDayMessage_InactivityNotice(t *testing.T) {
	svc := newMessageFixture()
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish, ReverseStreak: 5}

	msg := svc.EndOfDayMessage(context.Background(), user)
	if !strings.Contains(msg, "Daily Reading Reminder") {
		t.Errorf("expected inactivity header, got %q", msg)
	}
}

func TestEndOfDayMessage_EmptyForZeroState(t *testing.T) {
	svc := newMessageFixture()
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish}

	if msg := svc.EndOfDayMessage(context.Background(), user); msg != "" {
		t.Errorf("expected empty message for zero state, got %q", msg)
	}
}

func TestReminderMessage_AlwaysInvites(t *testing.T) {
	svc := newMessageFixture()
	user := &entity.User{TelegramID: 1, Language: entity.LanguageEnglish}

	msg := svc.ReminderMessage(context.Background(), user)
	if !strings.Contains(msg, "daily Quran reading") {
		t.Errorf("expected reading invitation, got %q", msg)
	}
}
