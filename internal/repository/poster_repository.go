package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
)

// ErrDailyPosterExists reports that another guarded poster already holds the day.
var ErrDailyPosterExists = errors.New("poster already exists for this day")

const posterDailyGuardIndex = "posters_daily_guard_idx"

type PosterRepository interface {
	Create(ctx context.Context, poster *models.Poster) error
	GetByID(ctx context.Context, userID int64, id string) (*models.Poster, error)
	GetByDate(ctx context.Context, userID int64, brandKitID, date string) (*models.Poster, bool, error)
	ListByUserID(ctx context.Context, userID int64, brandKitID string, limit int) ([]*models.Poster, error)
	Update(ctx context.Context, poster *models.Poster) error
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
}

type posterRepository struct {
	db *sql.DB
}

func NewPosterRepository(db *sql.DB) PosterRepository {
	return &posterRepository{db: db}
}

const posterColumns = `id, user_id, brand_kit_id, headline, subheadline, body, cta, hashtags,
	image_url, theme, topic, format_id, status, error, version, post_date, created_at, updated_at`

func scanPoster(row rowScanner) (*models.Poster, error) {
	var p models.Poster
	err := row.Scan(&p.ID, &p.UserID, &p.BrandKitID, &p.Headline, &p.Subheadline, &p.Body, &p.CTA,
		pq.Array(&p.Hashtags), &p.ImageURL, &p.Theme, &p.Topic, &p.FormatID, &p.Status, &p.Error,
		&p.Version, &p.PostDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *posterRepository) Create(ctx context.Context, p *models.Poster) error {
	query := `
		INSERT INTO posters (id, user_id, brand_kit_id, headline, subheadline, body, cta, hashtags,
			image_url, theme, topic, format_id, status, error, version, post_date, daily_guard)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	err := r.db.QueryRowContext(ctx, query, p.ID, p.UserID, p.BrandKitID, p.Headline, p.Subheadline,
		p.Body, p.CTA, pq.Array(p.Hashtags), p.ImageURL, p.Theme, p.Topic, p.FormatID, p.Status,
		p.Error, p.Version, p.PostDate, p.DailyGuard).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == posterDailyGuardIndex {
			return fmt.Errorf("insert poster for %s: %w", p.PostDate, ErrDailyPosterExists)
		}
		return fmt.Errorf("insert poster: %w", err)
	}
	return nil
}

func (r *posterRepository) GetByID(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	query := `SELECT ` + posterColumns + ` FROM posters WHERE id = $1 AND user_id = $2`

	p, err := scanPoster(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("poster")
		}
		return nil, fmt.Errorf("get poster: %w", err)
	}
	return p, nil
}

// GetByDate returns the newest poster for the brand kit on date that has not failed.
func (r *posterRepository) GetByDate(ctx context.Context, userID int64, brandKitID, date string) (*models.Poster, bool, error) {
	query := `SELECT ` + posterColumns + ` FROM posters
		WHERE user_id = $1 AND brand_kit_id = $2 AND post_date = $3 AND status <> $4
		ORDER BY created_at DESC
		LIMIT 1`

	p, err := scanPoster(r.db.QueryRowContext(ctx, query, userID, brandKitID, date, models.PosterStatusFailed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get poster by date: %w", err)
	}
	return p, true, nil
}

func (r *posterRepository) ListByUserID(ctx context.Context, userID int64, brandKitID string, limit int) ([]*models.Poster, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + posterColumns + ` FROM posters WHERE user_id = $1`
	args := []any{userID}
	if brandKitID != "" {
		query += ` AND brand_kit_id = $2`
		args = append(args, brandKitID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posters: %w", err)
	}
	defer rows.Close()

	var posters []*models.Poster
	for rows.Next() {
		p, err := scanPoster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poster: %w", err)
		}
		posters = append(posters, p)
	}
	return posters, rows.Err()
}

func (r *posterRepository) Update(ctx context.Context, p *models.Poster) error {
	query := `
		UPDATE posters
		SET headline = $1,
			subheadline = $2,
			body = $3,
			cta = $4,
			hashtags = $5,
			image_url = $6,
			theme = $7,
			topic = $8,
			status = $9,
			error = $10,
			version = $11,
			updated_at = $12
		WHERE id = $13 AND user_id = $14
	`
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	p.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query, p.Headline, p.Subheadline, p.Body, p.CTA,
		pq.Array(p.Hashtags), p.ImageURL, p.Theme, p.Topic, p.Status, p.Error, p.Version,
		p.UpdatedAt, p.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("update poster: %w", err)
	}
	return expectAffected(result, "poster")
}

func (r *posterRepository) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	query := `
		UPDATE posters
		SET status = $1,
			error = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update poster status: %w", err)
	}
	return nil
}
