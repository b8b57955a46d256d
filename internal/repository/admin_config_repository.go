package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// AdminConfigRepository stores JSON documents keyed by name. Merge performs a
// shallow JSONB merge so partial updates keep unspecified fields.
type AdminConfigRepository interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Merge(ctx context.Context, key string, patch any) error
}

type adminConfigRepository struct {
	db *sql.DB
}

func NewAdminConfigRepository(db *sql.DB) AdminConfigRepository {
	return &adminConfigRepository{db: db}
}

func (r *adminConfigRepository) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM admin_config WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get admin config %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode admin config %q: %w", key, err)
	}
	return true, nil
}

func (r *adminConfigRepository) Merge(ctx context.Context, key string, patch any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode admin config %q: %w", key, err)
	}
	query := `
		INSERT INTO admin_config (key, value)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE
		SET value = admin_config.value || EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, key, string(raw)); err != nil {
		return fmt.Errorf("merge admin config %q: %w", key, err)
	}
	return nil
}
