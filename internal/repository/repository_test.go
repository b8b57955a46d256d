package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var posterCols = []string{"id", "user_id", "brand_kit_id", "headline", "subheadline", "body", "cta",
	"hashtags", "image_url", "theme", "topic", "format_id", "status", "error", "version", "post_date",
	"created_at", "updated_at"}

func TestPosterRepository_GetByDate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPosterRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 7, 0, 0, 0, time.UTC)

	t.Run("returns newest non-failed poster", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM posters")).
			WithArgs(int64(7), "kit-1", "2025-01-02", models.PosterStatusFailed).
			WillReturnRows(sqlmock.NewRows(posterCols).AddRow(
				"p-1", 7, "kit-1", "Fresh Bread", "Daily", "Baked this morning", "Order now",
				"{#bread,#bakery}", "https://cdn/p-1.png", "morning", "bread", "instagram_portrait",
				models.PosterStatusGenerated, "", 1, "2025-01-02", now, now))

		p, found, err := repo.GetByDate(ctx, 7, "kit-1", "2025-01-02")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "p-1", p.ID)
		assert.Equal(t, []string{"#bread", "#bakery"}, p.Hashtags)
		assert.Equal(t, "2025-01-02", p.PostDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows is not an error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM posters")).
			WithArgs(int64(7), "kit-1", "2025-01-03", models.PosterStatusFailed).
			WillReturnRows(sqlmock.NewRows(posterCols))

		p, found, err := repo.GetByDate(ctx, 7, "kit-1", "2025-01-03")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPosterRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPosterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM posters WHERE id = $1 AND user_id = $2")).
		WithArgs("missing", int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 1, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPosterRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPosterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE posters")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Poster{ID: "p-1", UserID: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBrandKitRepository_GetByIDNormalizes(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBrandKitRepository(db)
	now := time.Now()

	cols := []string{"id", "user_id", "brand_name", "industry", "tagline", "primary_color",
		"secondary_color", "accent_color", "logo_url", "tone", "style_notes", "location",
		"target_audience", "platforms", "language", "sample_content", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM brand_kits WHERE id = $1 AND user_id = $2")).
		WithArgs("kit-1", int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"kit-1", 3, "Mama Put", "food", "", "#abc", "", "f59e0b", "", "", "",
			`{"country":"Nigeria","city":"Lagos","timezone":"Africa/Lagos"}`,
			"", "{instagram}", "", "", now, now))

	kit, err := repo.GetByID(context.Background(), 3, "kit-1")
	require.NoError(t, err)
	assert.Equal(t, "#AABBCC", kit.PrimaryColor)
	assert.Equal(t, models.DefaultSecondaryColor, kit.SecondaryColor)
	assert.Equal(t, "#F59E0B", kit.AccentColor)
	require.NotNil(t, kit.Location)
	assert.Equal(t, "Africa/Lagos", kit.Timezone())
	assert.Equal(t, []string{"instagram"}, kit.Platforms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_ListEnabledHandlesNulls(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScheduleRepository(db)
	now := time.Now()
	next := time.Date(2025, 1, 2, 7, 0, 0, 0, time.UTC)

	cols := []string{"id", "user_id", "enabled", "time", "timezone", "brand_kit_id", "notify_email",
		"notify_sms", "next_run_at", "last_run_at", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE enabled = TRUE")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("s-1", 1, true, "08:00", "Africa/Lagos", nil, false, false, next, nil, now, now).
			AddRow("s-2", 2, true, "09:30", "UTC", "kit-2", true, false, nil, nil, now, now))

	schedules, err := repo.ListEnabled(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	assert.Equal(t, "", schedules[0].BrandKitID)
	require.NotNil(t, schedules[0].NextRunAt)
	assert.True(t, next.Equal(*schedules[0].NextRunAt))
	assert.Nil(t, schedules[0].LastRunAt)

	assert.Equal(t, "kit-2", schedules[1].BrandKitID)
	assert.Nil(t, schedules[1].NextRunAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_UpdateRun(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScheduleRepository(db)
	next := time.Date(2025, 1, 3, 7, 0, 0, 0, time.UTC)
	last := time.Date(2025, 1, 2, 7, 1, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules")).
		WithArgs(next, last, "s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateRun(context.Background(), "s-1", next, last))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePlanUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs(models.PlanPro, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePlan(context.Background(), 99, models.PlanPro)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmailIsCaseInsensitive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = $1")).
		WithArgs("owner@example.com").
		WillReturnError(sql.ErrNoRows)

	user, found, err := repo.GetByEmail(context.Background(), "  Owner@Example.com ")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminConfigRepository_Merge(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET value = admin_config.value || EXCLUDED.value")).
		WithArgs("brand_kit", `{"brandName":"Acme"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Merge(context.Background(), "brand_kit", map[string]string{"brandName": "Acme"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminConfigRepository_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminConfigRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM admin_config")).
		WithArgs("brand_kit").
		WillReturnError(sql.ErrNoRows)

	var dest map[string]any
	found, err := repo.Get(context.Background(), "brand_kit", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPosterRepository_CreateDailyGuardConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPosterRepository(db)
	poster := &models.Poster{ID: "p-2", UserID: 7, BrandKitID: "kit-1", Status: models.PosterStatusGenerated,
		Version: 1, PostDate: "2025-01-02", DailyGuard: true}

	args := make([]driver.Value, 0, 17)
	for i := 0; i < 16; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	args = append(args, true)

	t.Run("guard index maps to sentinel", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posters")).
			WithArgs(args...).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "posters_daily_guard_idx"})

		err := repo.Create(context.Background(), poster)
		assert.ErrorIs(t, err, ErrDailyPosterExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other unique violations pass through", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posters")).
			WithArgs(args...).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "posters_pkey"})

		err := repo.Create(context.Background(), poster)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDailyPosterExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
