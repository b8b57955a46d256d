package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/maheshrc27/poster-api/internal/models"
)

type ScheduleRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Schedule, bool, error)
	Upsert(ctx context.Context, tx *sql.Tx, s *models.Schedule) error
	ListEnabled(ctx context.Context) ([]*models.Schedule, error)
	UpdateRun(ctx context.Context, id string, nextRunAt, lastRunAt time.Time) error
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, user_id, enabled, time, timezone, brand_kit_id, notify_email, notify_sms,
	next_run_at, last_run_at, created_at, updated_at`

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	var brandKitID sql.NullString
	var nextRunAt, lastRunAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.Enabled, &s.Time, &s.Timezone, &brandKitID,
		&s.NotifyEmail, &s.NotifySMS, &nextRunAt, &lastRunAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.BrandKitID = brandKitID.String
	if nextRunAt.Valid {
		t := nextRunAt.Time.UTC()
		s.NextRunAt = &t
	}
	if lastRunAt.Valid {
		t := lastRunAt.Time.UTC()
		s.LastRunAt = &t
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *scheduleRepository) GetByUserID(ctx context.Context, userID int64) (*models.Schedule, bool, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get schedule: %w", err)
	}
	return s, true, nil
}

// Upsert writes the user's single schedule. An existing row keeps its id.
func (r *scheduleRepository) Upsert(ctx context.Context, tx *sql.Tx, s *models.Schedule) error {
	query := `
		INSERT INTO schedules (id, user_id, enabled, time, timezone, brand_kit_id, notify_email,
			notify_sms, next_run_at, last_run_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
			time = EXCLUDED.time,
			timezone = EXCLUDED.timezone,
			brand_kit_id = EXCLUDED.brand_kit_id,
			notify_email = EXCLUDED.notify_email,
			notify_sms = EXCLUDED.notify_sms,
			next_run_at = EXCLUDED.next_run_at,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	args := []any{s.ID, s.UserID, s.Enabled, s.Time, s.Timezone, nullString(s.BrandKitID),
		s.NotifyEmail, s.NotifySMS, nullTime(s.NextRunAt), nullTime(s.LastRunAt)}

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, args...)
	} else {
		row = r.db.QueryRowContext(ctx, query, args...)
	}
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) ListEnabled(ctx context.Context) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE enabled = TRUE ORDER BY next_run_at ASC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enabled schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *scheduleRepository) UpdateRun(ctx context.Context, id string, nextRunAt, lastRunAt time.Time) error {
	query := `
		UPDATE schedules
		SET next_run_at = $1,
			last_run_at = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, nextRunAt.UTC(), lastRunAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update schedule run: %w", err)
	}
	return expectAffected(result, "schedule")
}
