package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
)

type checkInRepository struct {
	pool *pgxpool.Pool
}

// NewCheckInRepository creates a new PostgreSQL check-in repository
func NewCheckInRepository(pool *pgxpool.Pool) repository.CheckInRepository {
	return &checkInRepository{pool: pool}
}

func (r *checkInRepository) Create(ctx context.Context, checkIn *entity.CheckIn) error {
	defer observe("checkin_create")()

	query := `
		INSERT INTO check_ins (id, user_id, check_in_time, completed, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		checkIn.ID, checkIn.UserID, checkIn.CheckInTime, checkIn.Completed,
	)

	if err != nil {
		return fmt.Errorf("failed to create check-in: %w", err)
	}

	return nil
}

func (r *checkInRepository) GetSince(ctx context.Context, userID int64, since time.Time) ([]*entity.CheckIn, error) {
	defer observe("checkin_get_since")()

	query := `
		SELECT id, user_id, check_in_time, completed, created_at
		FROM check_ins
		WHERE user_id = $1 AND check_in_time >= $2
		ORDER BY check_in_time ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*entity.CheckIn
	for rows.Next() {
		checkIn := &entity.CheckIn{}
		err := rows.Scan(
			&checkIn.ID, &checkIn.UserID, &checkIn.CheckInTime, &checkIn.Completed, &checkIn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkIns = append(checkIns, checkIn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate check-ins: %w", err)
	}

	return checkIns, nil
}

func (r *checkInRepository) HasCompletionSince(ctx context.Context, userID int64, since time.Time) (bool, error) {
	defer observe("checkin_has_completion")()

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM check_ins
			WHERE user_id = $1 AND completed = TRUE AND check_in_time >= $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for completion: %w", err)
	}

	return exists, nil
}
