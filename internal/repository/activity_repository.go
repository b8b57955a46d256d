package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maheshrc27/poster-api/internal/models"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *models.Activity) error
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.Activity, error)
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activity_logs (id, user_id, type, poster_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.ID, a.UserID, a.Type, a.PosterID, a.Message).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *activityRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, user_id, type, poster_id, message, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.PosterID, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}
