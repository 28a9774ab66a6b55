package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/clock"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/logger"
)

// In-memory fakes shared by the service tests. The scheduler fans out across
// goroutines, so mutating fakes carry a mutex.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*entity.User)}
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[telegramID]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *user
	r.users[user.TelegramID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateStreak(_ context.Context, telegramID int64, currentStreak, reverseStreak int32, lastCheckIn *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[telegramID]
	if !ok {
		return entity.ErrUserNotFound
	}
	user.CurrentStreak = currentStreak
	user.ReverseStreak = reverseStreak
	user.LastCheckIn = lastCheckIn
	return nil
}

func (r *fakeUserRepo) UpdateTimezone(_ context.Context, telegramID int64, timezone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[telegramID]
	if !ok {
		return entity.ErrUserNotFound
	}
	user.Timezone = timezone
	return nil
}

func (r *fakeUserRepo) UpdateLanguage(_ context.Context, telegramID int64, language string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[telegramID]
	if !ok {
		return entity.ErrUserNotFound
	}
	user.Language = language
	return nil
}

func (r *fakeUserRepo) GetUsersWithReminders(_ context.Context) ([]*entity.User, error) {
	return r.all(), nil
}

func (r *fakeUserRepo) GetAll(_ context.Context) ([]*entity.User, error) {
	return r.all(), nil
}

func (r *fakeUserRepo) all() []*entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out
}

func (r *fakeUserRepo) CountActiveSince(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.users {
		if u.LastCheckIn != nil && !u.LastCheckIn.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

type fakeCheckInRepo struct {
	mu       sync.Mutex
	checkIns []*entity.CheckIn
}

func (r *fakeCheckInRepo) Create(_ context.Context, checkIn *entity.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *checkIn
	r.checkIns = append(r.checkIns, &cp)
	return nil
}

func (r *fakeCheckInRepo) GetSince(_ context.Context, userID int64, since time.Time) ([]*entity.CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.CheckIn
	for _, c := range r.checkIns {
		if c.UserID == userID && !c.CheckInTime.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCheckInRepo) HasCompletionSince(_ context.Context, userID int64, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.checkIns {
		if c.UserID == userID && c.Completed && !c.CheckInTime.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeReminderRepo struct {
	mu    sync.Mutex
	times map[int64][]entity.TimeOfDay
	sent  []*entity.SentReminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{times: make(map[int64][]entity.TimeOfDay)}
}

func (r *fakeReminderRepo) GetTimes(_ context.Context, userID int64) ([]entity.TimeOfDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]entity.TimeOfDay(nil), r.times[userID]...), nil
}

func (r *fakeReminderRepo) SetTimes(_ context.Context, userID int64, times []entity.TimeOfDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.times[userID] = append([]entity.TimeOfDay(nil), times...)
	return nil
}

func (r *fakeReminderRepo) AddTime(_ context.Context, userID int64, slot entity.TimeOfDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.times[userID] {
		if t == slot {
			return nil
		}
	}
	r.times[userID] = append(r.times[userID], slot)
	return nil
}

func (r *fakeReminderRepo) DeleteTime(_ context.Context, userID int64, slot entity.TimeOfDay) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.times[userID] {
		if t == slot {
			r.times[userID] = append(r.times[userID][:i], r.times[userID][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReminderRepo) RecordSent(_ context.Context, userID int64, slot entity.TimeOfDay, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, &entity.SentReminder{UserID: userID, Slot: slot, SentAt: sentAt})
	return nil
}

func (r *fakeReminderRepo) GetSentSince(_ context.Context, userID int64, cutoff time.Time) ([]*entity.SentReminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.SentReminder
	for _, s := range r.sent {
		if s.UserID == userID && !s.SentAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeTemplateRepo struct {
	templates []*entity.MessageTemplate
}

func (r *fakeTemplateRepo) GetByTypeAndThreshold(_ context.Context, templateType entity.TemplateType, thresholdDays int32) ([]*entity.MessageTemplate, error) {
	var out []*entity.MessageTemplate
	for _, t := range r.templates {
		if t.Type == templateType && t.ThresholdDays == thresholdDays {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) GetByType(_ context.Context, templateType entity.TemplateType) ([]*entity.MessageTemplate, error) {
	var out []*entity.MessageTemplate
	for _, t := range r.templates {
		if t.Type == templateType {
			out = append(out, t)
		}
	}
	return out, nil
}

type sentMessage struct {
	chatID int64
	text   string
	kind   entity.NotificationKind
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (d *fakeDispatcher) Send(_ context.Context, chatID int64, text string, kind entity.NotificationKind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, sentMessage{chatID: chatID, text: text, kind: kind})
	return nil
}

// fixedClock returns a clock provider pinned to the given instant.
func fixedClock(at time.Time) *clock.Provider {
	p := clock.NewProvider("UTC", logger.NewNop())
	p.NowFunc = func() time.Time { return at }
	return p
}
