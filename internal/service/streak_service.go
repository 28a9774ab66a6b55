package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/metrics"
	"github.com/Alhassan777/Quraan-Wird-Bot/pkg/clock"
)

// duplicateWindow is the rolling anti-spam window: one counted completion per
// trailing 24 hours.
const duplicateWindow = 24 * time.Hour

type streakService struct {
	userRepo    repository.UserRepository
	checkInRepo repository.CheckInRepository
	clock       *clock.Provider
	logger      *zap.SugaredLogger

	// mutating operations on one user's counters are serialized; the store
	// read-then-write is not atomic on its own.
	locksMu   sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewStreakService creates the streak accounting engine.
func NewStreakService(
	userRepo repository.UserRepository,
	checkInRepo repository.CheckInRepository,
	clk *clock.Provider,
	logger *zap.SugaredLogger,
) service.StreakService {
	return &streakService{
		userRepo:    userRepo,
		checkInRepo: checkInRepo,
		clock:       clk,
		logger:      logger,
		userLocks:   make(map[int64]*sync.Mutex),
	}
}

func (s *streakService) lockFor(telegramID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.userLocks[telegramID]
	if !ok {
		mu = &sync.Mutex{}
		s.userLocks[telegramID] = mu
	}
	return mu
}

func (s *streakService) Advance(ctx context.Context, telegramID int64, username string, hadCompletion bool, now time.Time) (*service.StreakResult, error) {
	mu := s.lockFor(telegramID)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.getOrCreateUser(ctx, telegramID, username)
	if err != nil {
		return nil, err
	}

	loc := s.clock.LocationOf(user.Timezone)
	nowLocal := now.In(loc)

	if hadCompletion {
		done, err := s.checkInRepo.HasCompletionSince(ctx, telegramID, now.Add(-duplicateWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to check for recent completion: %w", err)
		}
		if done {
			metrics.CheckInsRecorded.WithLabelValues("duplicate").Inc()
			return &service.StreakResult{
				CurrentStreak:    user.CurrentStreak,
				ReverseStreak:    user.ReverseStreak,
				AlreadyCompleted: true,
			}, nil
		}
	}

	current, reverse := nextCounters(user, hadCompletion, now, nowLocal)

	lastCheckIn := user.LastCheckIn
	if hadCompletion {
		lastCheckIn = &now
	}

	// Counters commit before the ledger append: a failure here leaves the
	// caller-visible state untouched, and an orphaned event after a failed
	// append is neutralized by the duplicate guard on retry.
	if err := s.userRepo.UpdateStreak(ctx, telegramID, current, reverse, lastCheckIn); err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	if hadCompletion {
		checkIn := &entity.CheckIn{
			ID:          uuid.New(),
			UserID:      telegramID,
			CheckInTime: now,
			Completed:   true,
		}
		if err := s.checkInRepo.Create(ctx, checkIn); err != nil {
			return nil, fmt.Errorf("failed to record check-in: %w", err)
		}

		metrics.CheckInsRecorded.WithLabelValues("recorded").Inc()
		metrics.StreakLength.Observe(float64(current))
	}

	s.logger.Debugw("streak advanced",
		"user_id", telegramID,
		"completed", hadCompletion,
		"current_streak", current,
		"reverse_streak", reverse,
	)

	return &service.StreakResult{CurrentStreak: current, ReverseStreak: reverse}, nil
}

// nextCounters computes the new (current, reverse) pair. Calendar-day
// comparisons use the subject's local zone; the reverse streak accumulates
// whole elapsed days, uncapped.
func nextCounters(user *entity.User, hadCompletion bool, now, nowLocal time.Time) (int32, int32) {
	if user.LastCheckIn == nil {
		if hadCompletion {
			return 1, 0
		}
		return 0, 1
	}

	lastLocal := user.LastCheckIn.In(nowLocal.Location())
	elapsed := now.Sub(*user.LastCheckIn)

	if hadCompletion {
		yesterday := nowLocal.AddDate(0, 0, -1)
		switch {
		case sameLocalDay(lastLocal, nowLocal):
			// Same-day completion not caught by the rolling guard (the last
			// completion was more than 24h ago but the local date rolled
			// back over DST); count it as the day's first.
			return user.CurrentStreak + 1, 0
		case sameLocalDay(lastLocal, yesterday):
			// Consecutive day: streak continues.
			return user.CurrentStreak + 1, 0
		default:
			// A full day was missed; the completion starts a fresh run and
			// cancels the gap.
			return 1, 0
		}
	}

	if elapsed > 24*time.Hour {
		return 0, int32(elapsed / (24 * time.Hour))
	}

	// Non-completion inside the window is a query, not a missed-day event.
	return user.CurrentStreak, user.ReverseStreak
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *streakService) State(ctx context.Context, telegramID int64) (*entity.User, error) {
	return s.getOrCreateUser(ctx, telegramID, "")
}

func (s *streakService) HasCompletedWithin(ctx context.Context, telegramID int64, now time.Time) (bool, error) {
	done, err := s.checkInRepo.HasCompletionSince(ctx, telegramID, now.Add(-duplicateWindow))
	if err != nil {
		return false, fmt.Errorf("failed to check for recent completion: %w", err)
	}
	return done, nil
}

// getOrCreateUser loads a user, creating one with zero streak state if absent.
func (s *streakService) getOrCreateUser(ctx context.Context, telegramID int64, username string) (*entity.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user = &entity.User{
		TelegramID: telegramID,
		Username:   username,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("created user", "user_id", telegramID)
	return user, nil
}
