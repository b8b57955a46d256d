// repository/user_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maheshrc27/poster-api/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, bool, error)
	Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePlan(ctx context.Context, id int64, plan string) error
	SetOnboarded(ctx context.Context, tx *sql.Tx, id int64) error
	Remove(ctx context.Context, id int64) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, google_id, email, name, profile_picture, plan, onboarded, plan_updated_at, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var planUpdatedAt sql.NullTime
	err := row.Scan(&user.ID, &user.GoogleID, &user.Email, &user.Name, &user.ProfilePicture,
		&user.Plan, &user.Onboarded, &planUpdatedAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if planUpdatedAt.Valid {
		user.PlanUpdatedAt = &planUpdatedAt.Time
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get user: %w", err)
	}
	return user, true, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	query := "SELECT " + userColumns + " FROM users WHERE LOWER(email) = $1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get user by email: %w", err)
	}
	return user, true, nil
}

func (r *userRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	query := "INSERT INTO users (google_id, email, name, profile_picture, plan) VALUES ($1, $2, $3, $4, $5) RETURNING id"

	plan := user.Plan
	if plan == "" {
		plan = models.PlanFree
	}

	var err error
	var id int64

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, user.GoogleID, user.Email, user.Name, user.ProfilePicture, plan).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, user.GoogleID, user.Email, user.Name, user.ProfilePicture, plan).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET google_id = $1,
			name = $2,
			profile_picture = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, user.GoogleID, user.Name, user.ProfilePicture, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePlan(ctx context.Context, id int64, plan string) error {
	query := `
		UPDATE users
		SET plan = $1,
			plan_updated_at = $2,
			updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, plan, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update user plan: %w", err)
	}
	return expectAffected(result, "user")
}

func (r *userRepository) SetOnboarded(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `UPDATE users SET onboarded = TRUE, updated_at = $1 WHERE id = $2`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, time.Now(), id)
	} else {
		_, err = r.db.ExecContext(ctx, query, time.Now(), id)
	}
	if err != nil {
		return fmt.Errorf("set user onboarded: %w", err)
	}
	return nil
}

func (r *userRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
