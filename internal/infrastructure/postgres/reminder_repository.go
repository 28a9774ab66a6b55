package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
)

type reminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository creates a new PostgreSQL reminder repository
func NewReminderRepository(pool *pgxpool.Pool) repository.ReminderRepository {
	return &reminderRepository{pool: pool}
}

func (r *reminderRepository) GetTimes(ctx context.Context, userID int64) ([]entity.TimeOfDay, error) {
	defer observe("reminder_get_times")()

	query := `
		SELECT hour, minute
		FROM reminder_times
		WHERE user_id = $1
		ORDER BY hour, minute
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder times: %w", err)
	}
	defer rows.Close()

	var times []entity.TimeOfDay
	for rows.Next() {
		var t entity.TimeOfDay
		if err := rows.Scan(&t.Hour, &t.Minute); err != nil {
			return nil, fmt.Errorf("failed to scan reminder time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder times: %w", err)
	}

	return times, nil
}

func (r *reminderRepository) SetTimes(ctx context.Context, userID int64, times []entity.TimeOfDay) error {
	defer observe("reminder_set_times")()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reminder_times WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear reminder times: %w", err)
	}

	for _, t := range times {
		_, err := tx.Exec(ctx,
			`INSERT INTO reminder_times (user_id, hour, minute, created_at) VALUES ($1, $2, $3, NOW())`,
			userID, t.Hour, t.Minute,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reminder time: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reminder times: %w", err)
	}

	return nil
}

func (r *reminderRepository) AddTime(ctx context.Context, userID int64, slot entity.TimeOfDay) error {
	defer observe("reminder_add_time")()

	query := `
		INSERT INTO reminder_times (user_id, hour, minute, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, hour, minute) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, slot.Hour, slot.Minute); err != nil {
		return fmt.Errorf("failed to add reminder time: %w", err)
	}

	return nil
}

func (r *reminderRepository) DeleteTime(ctx context.Context, userID int64, slot entity.TimeOfDay) (bool, error) {
	defer observe("reminder_delete_time")()

	query := `
		DELETE FROM reminder_times
		WHERE user_id = $1 AND hour = $2 AND minute = $3
	`

	result, err := r.pool.Exec(ctx, query, userID, slot.Hour, slot.Minute)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder time: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *reminderRepository) RecordSent(ctx context.Context, userID int64, slot entity.TimeOfDay, sentAt time.Time) error {
	defer observe("reminder_record_sent")()

	query := `
		INSERT INTO sent_reminders (user_id, hour, minute, sent_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	if _, err := r.pool.Exec(ctx, query, userID, slot.Hour, slot.Minute, sentAt); err != nil {
		return fmt.Errorf("failed to record sent reminder: %w", err)
	}

	return nil
}

func (r *reminderRepository) GetSentSince(ctx context.Context, userID int64, cutoff time.Time) ([]*entity.SentReminder, error) {
	defer observe("reminder_get_sent")()

	query := `
		SELECT user_id, hour, minute, sent_at, created_at
		FROM sent_reminders
		WHERE user_id = $1 AND sent_at >= $2
		ORDER BY sent_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get sent reminders: %w", err)
	}
	defer rows.Close()

	var sent []*entity.SentReminder
	for rows.Next() {
		record := &entity.SentReminder{}
		err := rows.Scan(
			&record.UserID, &record.Slot.Hour, &record.Slot.Minute, &record.SentAt, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sent reminder: %w", err)
		}
		sent = append(sent, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sent reminders: %w", err)
	}

	return sent, nil
}
