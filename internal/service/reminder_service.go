package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/metrics"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/clock"
)

// SchedulerOptions tunes the periodic scans.
type SchedulerOptions struct {
	// EndOfDayHour is the start of the one-hour local window for the daily
	// streak-at-risk check (21 means 21:00–22:00).
	EndOfDayHour int

	// MaxConcurrency bounds the per-subject fan-out within one scan.
	MaxConcurrency int

	// SubjectTimeout bounds store and dispatch work for one subject.
	SubjectTimeout time.Duration

	// DefaultReminderTimes are shown to users who configured no slots.
	DefaultReminderTimes []entity.TimeOfDay
}

type reminderService struct {
	userRepo     repository.UserRepository
	reminderRepo repository.ReminderRepository
	streaks      service.StreakService
	messages     service.MessageService
	dispatcher   service.NotificationDispatcher
	clock        *clock.Provider
	logger       *zap.SugaredLogger
	opts         SchedulerOptions
}

// NewReminderService creates the reminder scheduler.
func NewReminderService(
	userRepo repository.UserRepository,
	reminderRepo repository.ReminderRepository,
	streaks service.StreakService,
	messages service.MessageService,
	dispatcher service.NotificationDispatcher,
	clk *clock.Provider,
	logger *zap.SugaredLogger,
	opts SchedulerOptions,
) service.ReminderService {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 16
	}
	if opts.SubjectTimeout <= 0 {
		opts.SubjectTimeout = 10 * time.Second
	}
	if opts.EndOfDayHour <= 0 {
		opts.EndOfDayHour = 21
	}
	return &reminderService{
		userRepo:     userRepo,
		reminderRepo: reminderRepo,
		streaks:      streaks,
		messages:     messages,
		dispatcher:   dispatcher,
		clock:        clk,
		logger:       logger,
		opts:         opts,
	}
}

func (s *reminderService) SetReminder(ctx context.Context, telegramID int64, timeOfDay string) (entity.TimeOfDay, error) {
	slot, err := entity.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return entity.TimeOfDay{}, err
	}
	if err := s.reminderRepo.AddTime(ctx, telegramID, slot); err != nil {
		return entity.TimeOfDay{}, fmt.Errorf("failed to add reminder time: %w", err)
	}
	s.logger.Infow("reminder set", "user_id", telegramID, "time", slot.String())
	return slot, nil
}

func (s *reminderService) ReplaceReminders(ctx context.Context, telegramID int64, times []string) ([]entity.TimeOfDay, error) {
	slots := make([]entity.TimeOfDay, 0, len(times))
	seen := make(map[entity.TimeOfDay]bool, len(times))
	for _, raw := range times {
		slot, err := entity.ParseTimeOfDay(raw)
		if err != nil {
			return nil, err
		}
		if seen[slot] {
			continue
		}
		seen[slot] = true
		slots = append(slots, slot)
	}

	if err := s.reminderRepo.SetTimes(ctx, telegramID, slots); err != nil {
		return nil, fmt.Errorf("failed to set reminder times: %w", err)
	}
	s.logger.Infow("reminders replaced", "user_id", telegramID, "count", len(slots))
	return slots, nil
}

func (s *reminderService) ListReminders(ctx context.Context, telegramID int64) ([]string, error) {
	times, err := s.reminderRepo.GetTimes(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder times: %w", err)
	}
	if len(times) == 0 {
		times = s.opts.DefaultReminderTimes
	}

	sort.Slice(times, func(i, j int) bool {
		if times[i].Hour != times[j].Hour {
			return times[i].Hour < times[j].Hour
		}
		return times[i].Minute < times[j].Minute
	})

	out := make([]string, 0, len(times))
	for _, t := range times {
		out = append(out, t.String())
	}
	return out, nil
}

func (s *reminderService) DeleteReminder(ctx context.Context, telegramID int64, timeOfDay string) (bool, error) {
	slot, err := entity.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, err
	}
	existed, err := s.reminderRepo.DeleteTime(ctx, telegramID, slot)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder time: %w", err)
	}
	return existed, nil
}

// IsDue implements the per-tick decision: exact (hour, minute) slot match,
// nothing sent for that slot in the same local day, and today's task not
// already completed.
func (s *reminderService) IsDue(ctx context.Context, user *entity.User, nowLocal time.Time) (bool, entity.TimeOfDay, error) {
	times, err := s.reminderRepo.GetTimes(ctx, user.TelegramID)
	if err != nil {
		return false, entity.TimeOfDay{}, fmt.Errorf("failed to get reminder times: %w", err)
	}

	var matched entity.TimeOfDay
	found := false
	for _, slot := range times {
		if slot.Matches(nowLocal) {
			matched = slot
			found = true
			break
		}
	}
	if !found {
		return false, entity.TimeOfDay{}, nil
	}

	sent, err := s.sentForSlotToday(ctx, user.TelegramID, matched, nowLocal)
	if err != nil {
		return false, entity.TimeOfDay{}, err
	}
	if sent {
		return false, entity.TimeOfDay{}, nil
	}

	completed, err := s.streaks.HasCompletedWithin(ctx, user.TelegramID, nowLocal)
	if err != nil {
		return false, entity.TimeOfDay{}, err
	}
	if completed {
		return false, entity.TimeOfDay{}, nil
	}

	return true, matched, nil
}

// sentForSlotToday checks the sent-reminder log for the slot within the
// subject's current local calendar day.
func (s *reminderService) sentForSlotToday(ctx context.Context, telegramID int64, slot entity.TimeOfDay, nowLocal time.Time) (bool, error) {
	midnight := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, nowLocal.Location())
	records, err := s.reminderRepo.GetSentSince(ctx, telegramID, midnight)
	if err != nil {
		return false, fmt.Errorf("failed to get sent reminders: %w", err)
	}
	for _, r := range records {
		if r.Slot == slot {
			return true, nil
		}
	}
	return false, nil
}

func (s *reminderService) ProcessTick(ctx context.Context) error {
	started := time.Now()
	defer func() {
		metrics.TickDuration.WithLabelValues("reminder").Observe(time.Since(started).Seconds())
	}()

	users, err := s.userRepo.GetUsersWithReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to get users with reminders: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrency)

	for _, user := range users {
		user := user
		g.Go(func() error {
			// Failures are logged per subject and never abort the batch.
			s.processUserTick(gctx, user)
			return nil
		})
	}
	return g.Wait()
}

func (s *reminderService) processUserTick(ctx context.Context, user *entity.User) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SubjectTimeout)
	defer cancel()

	nowLocal := s.clock.NowIn(user.Timezone)

	due, slot, err := s.IsDue(ctx, user, nowLocal)
	if err != nil {
		s.logger.Errorw("reminder evaluation failed", "user_id", user.TelegramID, "error", err)
		return
	}
	if !due {
		return
	}

	text := s.messages.ReminderMessage(ctx, user)
	if err := s.dispatcher.Send(ctx, user.TelegramID, text, entity.NotificationKindReminder); err != nil {
		// Not marked as sent: the slot stays eligible while the minute lasts.
		metrics.DispatchFailures.WithLabelValues(string(entity.NotificationKindReminder)).Inc()
		s.logger.Errorw("failed to send reminder", "user_id", user.TelegramID, "time", slot.String(), "error", err)
		return
	}

	if err := s.reminderRepo.RecordSent(ctx, user.TelegramID, slot, nowLocal); err != nil {
		s.logger.Errorw("failed to record sent reminder", "user_id", user.TelegramID, "time", slot.String(), "error", err)
		return
	}

	metrics.RemindersSent.WithLabelValues(string(entity.NotificationKindReminder)).Inc()
	s.logger.Infow("reminder sent", "user_id", user.TelegramID, "time", slot.String())
}

func (s *reminderService) ProcessEndOfDay(ctx context.Context) error {
	started := time.Now()
	defer func() {
		metrics.TickDuration.WithLabelValues("end_of_day").Observe(time.Since(started).Seconds())
	}()

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to get users: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrency)

	for _, user := range users {
		user := user
		g.Go(func() error {
			s.processUserEndOfDay(gctx, user)
			return nil
		})
	}
	return g.Wait()
}

func (s *reminderService) processUserEndOfDay(ctx context.Context, user *entity.User) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SubjectTimeout)
	defer cancel()

	nowLocal := s.clock.NowIn(user.Timezone)
	if nowLocal.Hour() != s.opts.EndOfDayHour {
		return
	}

	completed, err := s.streaks.HasCompletedWithin(ctx, user.TelegramID, nowLocal)
	if err != nil {
		s.logger.Errorw("end-of-day completion check failed", "user_id", user.TelegramID, "error", err)
		return
	}
	if completed {
		return
	}

	// Once per local day, deduped through the sent-reminder log.
	sent, err := s.sentForSlotToday(ctx, user.TelegramID, entity.EndOfDaySlot, nowLocal)
	if err != nil {
		s.logger.Errorw("end-of-day dedup check failed", "user_id", user.TelegramID, "error", err)
		return
	}
	if sent {
		return
	}

	text := s.messages.EndOfDayMessage(ctx, user)
	if text == "" {
		// No streak to protect and no gap to nudge about.
		return
	}

	if err := s.dispatcher.Send(ctx, user.TelegramID, text, entity.NotificationKindEndOfDay); err != nil {
		metrics.DispatchFailures.WithLabelValues(string(entity.NotificationKindEndOfDay)).Inc()
		s.logger.Errorw("failed to send end-of-day notice", "user_id", user.TelegramID, "error", err)
		return
	}

	if err := s.reminderRepo.RecordSent(ctx, user.TelegramID, entity.EndOfDaySlot, nowLocal); err != nil {
		s.logger.Errorw("failed to record end-of-day notice", "user_id", user.TelegramID, "error", err)
		return
	}

	metrics.RemindersSent.WithLabelValues(string(entity.NotificationKindEndOfDay)).Inc()
	s.logger.Infow("end-of-day notice sent",
		"user_id", user.TelegramID,
		"current_streak", user.CurrentStreak,
		"reverse_streak", user.ReverseStreak,
	)
}
