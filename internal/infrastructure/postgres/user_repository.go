package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/metrics"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
	telegram_id, username, first_name, language, timezone,
	current_streak, reverse_streak, last_check_in, created_at, updated_at
`

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	defer observe("user_get")()

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE telegram_id = $1
	`

	user := &entity.User{}
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID, &user.Username, &user.FirstName, &user.Language, &user.Timezone,
		&user.CurrentStreak, &user.ReverseStreak, &user.LastCheckIn, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	defer observe("user_create")()

	query := `
		INSERT INTO users (
			telegram_id, username, first_name, language, timezone,
			current_streak, reverse_streak, last_check_in, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, NOW(), NOW()
		)
		ON CONFLICT (telegram_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		user.TelegramID, user.Username, user.FirstName, user.Language, user.Timezone,
		user.CurrentStreak, user.ReverseStreak, user.LastCheckIn,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) UpdateStreak(ctx context.Context, telegramID int64, currentStreak, reverseStreak int32, lastCheckIn *time.Time) error {
	defer observe("user_update_streak")()

	query := `
		UPDATE users
		SET current_streak = $2, reverse_streak = $3, last_check_in = $4, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, currentStreak, reverseStreak, lastCheckIn)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) UpdateTimezone(ctx context.Context, telegramID int64, timezone string) error {
	defer observe("user_update_timezone")()

	query := `
		UPDATE users
		SET timezone = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, timezone)
	if err != nil {
		return fmt.Errorf("failed to update timezone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) UpdateLanguage(ctx context.Context, telegramID int64, language string) error {
	defer observe("user_update_language")()

	query := `
		UPDATE users
		SET language = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, language)
	if err != nil {
		return fmt.Errorf("failed to update language: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) GetUsersWithReminders(ctx context.Context) ([]*entity.User, error) {
	defer observe("user_list_with_reminders")()

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE telegram_id IN (SELECT DISTINCT user_id FROM reminder_times)
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with reminders: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *userRepository) GetAll(ctx context.Context) ([]*entity.User, error) {
	defer observe("user_list_all")()

	query := `
		SELECT ` + userColumns + `
		FROM users
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *userRepository) CountActiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	defer observe("user_count_active")()

	query := `
		SELECT COUNT(*)
		FROM users
		WHERE last_check_in >= $1
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}

	return count, nil
}

func scanUsers(rows pgx.Rows) ([]*entity.User, error) {
	var users []*entity.User
	for rows.Next() {
		user := &entity.User{}
		err := rows.Scan(
			&user.TelegramID, &user.Username, &user.FirstName, &user.Language, &user.Timezone,
			&user.CurrentStreak, &user.ReverseStreak, &user.LastCheckIn, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// observe times one store operation for the latency histogram.
func observe(operation string) func() {
	started := time.Now()
	return func() {
		metrics.StoreLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	}
}
