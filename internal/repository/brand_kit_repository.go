package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
)

type BrandKitRepository interface {
	Create(ctx context.Context, tx *sql.Tx, kit *models.BrandKit) error
	GetByID(ctx context.Context, userID int64, id string) (*models.BrandKit, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.BrandKit, error)
	Update(ctx context.Context, kit *models.BrandKit) error
	Remove(ctx context.Context, userID int64, id string) error
}

type brandKitRepository struct {
	db *sql.DB
}

func NewBrandKitRepository(db *sql.DB) BrandKitRepository {
	return &brandKitRepository{db: db}
}

const brandKitColumns = `id, user_id, brand_name, industry, tagline, primary_color, secondary_color,
	accent_color, logo_url, tone, style_notes, location, target_audience, platforms, language,
	sample_content, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBrandKit(row rowScanner) (*models.BrandKit, error) {
	var kit models.BrandKit
	var location []byte
	err := row.Scan(&kit.ID, &kit.UserID, &kit.BrandName, &kit.Industry, &kit.Tagline,
		&kit.PrimaryColor, &kit.SecondaryColor, &kit.AccentColor, &kit.LogoURL, &kit.Tone,
		&kit.StyleNotes, &location, &kit.TargetAudience, pq.Array(&kit.Platforms), &kit.Language,
		&kit.SampleContent, &kit.CreatedAt, &kit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(location) > 0 && string(location) != "null" {
		var loc models.Location
		if err := json.Unmarshal(location, &loc); err != nil {
			return nil, fmt.Errorf("decode brand kit location: %w", err)
		}
		kit.Location = &loc
	}
	return kit.Normalize(), nil
}

func marshalLocation(loc *models.Location) ([]byte, error) {
	if loc == nil {
		return nil, nil
	}
	return json.Marshal(loc)
}

func (r *brandKitRepository) Create(ctx context.Context, tx *sql.Tx, kit *models.BrandKit) error {
	query := `
		INSERT INTO brand_kits (id, user_id, brand_name, industry, tagline, primary_color,
			secondary_color, accent_color, logo_url, tone, style_notes, location,
			target_audience, platforms, language, sample_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	location, err := marshalLocation(kit.Location)
	if err != nil {
		return err
	}

	args := []any{kit.ID, kit.UserID, kit.BrandName, kit.Industry, kit.Tagline, kit.PrimaryColor,
		kit.SecondaryColor, kit.AccentColor, kit.LogoURL, kit.Tone, kit.StyleNotes, location,
		kit.TargetAudience, pq.Array(kit.Platforms), kit.Language, kit.SampleContent}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&kit.CreatedAt, &kit.UpdatedAt)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&kit.CreatedAt, &kit.UpdatedAt)
	}
	if err != nil {
		return fmt.Errorf("insert brand kit: %w", err)
	}
	return nil
}

func (r *brandKitRepository) GetByID(ctx context.Context, userID int64, id string) (*models.BrandKit, error) {
	query := `SELECT ` + brandKitColumns + ` FROM brand_kits WHERE id = $1 AND user_id = $2`

	kit, err := scanBrandKit(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("brand kit")
		}
		return nil, fmt.Errorf("get brand kit: %w", err)
	}
	return kit, nil
}

func (r *brandKitRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.BrandKit, error) {
	query := `SELECT ` + brandKitColumns + ` FROM brand_kits WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list brand kits: %w", err)
	}
	defer rows.Close()

	var kits []*models.BrandKit
	for rows.Next() {
		kit, err := scanBrandKit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand kit: %w", err)
		}
		kits = append(kits, kit)
	}
	return kits, rows.Err()
}

func (r *brandKitRepository) Update(ctx context.Context, kit *models.BrandKit) error {
	query := `
		UPDATE brand_kits
		SET brand_name = $1,
			industry = $2,
			tagline = $3,
			primary_color = $4,
			secondary_color = $5,
			accent_color = $6,
			logo_url = $7,
			tone = $8,
			style_notes = $9,
			location = $10,
			target_audience = $11,
			platforms = $12,
			language = $13,
			sample_content = $14,
			updated_at = $15
		WHERE id = $16 AND user_id = $17
	`

	location, err := marshalLocation(kit.Location)
	if err != nil {
		return err
	}

	kit.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query, kit.BrandName, kit.Industry, kit.Tagline,
		kit.PrimaryColor, kit.SecondaryColor, kit.AccentColor, kit.LogoURL, kit.Tone, kit.StyleNotes,
		location, kit.TargetAudience, pq.Array(kit.Platforms), kit.Language, kit.SampleContent,
		kit.UpdatedAt, kit.ID, kit.UserID)
	if err != nil {
		return fmt.Errorf("update brand kit: %w", err)
	}
	return expectAffected(result, "brand kit")
}

func (r *brandKitRepository) Remove(ctx context.Context, userID int64, id string) error {
	query := `DELETE FROM brand_kits WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete brand kit: %w", err)
	}
	return expectAffected(result, "brand kit")
}

func expectAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(what)
	}
	return nil
}
