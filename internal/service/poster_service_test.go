package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type posterFixture struct {
	posters   *MockPosterRepository
	kits      *MockBrandKitRepository
	instagram *MockInstagramService
	activity  *fakeActivity
	svc       *posterService
}

func newPosterFixture() *posterFixture {
	f := &posterFixture{
		posters:   new(MockPosterRepository),
		kits:      new(MockBrandKitRepository),
		instagram: new(MockInstagramService),
		activity:  &fakeActivity{},
	}
	f.svc = NewPosterService(f.posters, f.kits, f.instagram, f.activity, logger.Nop()).(*posterService)
	return f
}

func samplePoster(status string) *models.Poster {
	return &models.Poster{
		ID:         "p1",
		UserID:     1,
		BrandKitID: "kit-1",
		Headline:   "Fresh Jollof Friday",
		Body:       "Come hungry.",
		Hashtags:   []string{"#jollof", "#lagos"},
		ImageURL:   "https://cdn.example.com/p1.png",
		Status:     status,
		Version:    1,
		PostDate:   "2025-03-04",
	}
}

func TestPosterService_Approve(t *testing.T) {
	tests := []struct {
		name       string
		poster     *models.Poster
		wantStatus string
		wantErr    bool
		wantUpdate bool
	}{
		{name: "generated", poster: samplePoster(models.PosterStatusGenerated), wantStatus: models.PosterStatusApproved, wantUpdate: true},
		{name: "already approved", poster: samplePoster(models.PosterStatusApproved), wantStatus: models.PosterStatusApproved},
		{name: "posted", poster: samplePoster(models.PosterStatusPosted), wantErr: true},
		{name: "failed", poster: samplePoster(models.PosterStatusFailed), wantErr: true},
		{name: "still rendering", poster: func() *models.Poster {
			p := samplePoster(models.PosterStatusGenerated)
			p.ImageURL = ""
			return p
		}(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPosterFixture()
			f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(tt.poster, nil)
			f.posters.On("Update", mock.Anything, mock.Anything).Return(nil)

			got, err := f.svc.Approve(context.Background(), 1, "p1")
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				f.posters.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			if tt.wantUpdate {
				f.posters.AssertCalled(t, "Update", mock.Anything, got)
				assert.Equal(t, []string{models.ActivityPosterApproved}, f.activity.types())
			} else {
				f.posters.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPosterService_Duplicate(t *testing.T) {
	f := newPosterFixture()
	src := samplePoster(models.PosterStatusPosted)
	src.Version = 4
	f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(src, nil)
	f.posters.On("Create", mock.Anything, mock.Anything).Return(nil)

	dup, err := f.svc.Duplicate(context.Background(), 1, "p1")
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, models.PosterStatusGenerated, dup.Status)
	assert.Equal(t, 1, dup.Version)
	assert.Equal(t, src.Headline, dup.Headline)
	assert.Equal(t, src.PostDate, dup.PostDate)
	assert.Equal(t, src.Hashtags, dup.Hashtags)

	dup.Hashtags[0] = "#changed"
	assert.Equal(t, "#jollof", src.Hashtags[0])
	assert.Equal(t, []string{models.ActivityPosterDuplicated}, f.activity.types())
}

func TestPosterService_DuplicateRejectsFailed(t *testing.T) {
	f := newPosterFixture()
	f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(samplePoster(models.PosterStatusFailed), nil)

	_, err := f.svc.Duplicate(context.Background(), 1, "p1")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPosterService_EditCopyBumpsVersion(t *testing.T) {
	f := newPosterFixture()
	f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(samplePoster(models.PosterStatusApproved), nil)
	f.posters.On("Update", mock.Anything, mock.Anything).Return(nil)

	headline := "Suya Saturday"
	got, err := f.svc.EditCopy(context.Background(), 1, "p1", &transfer.CopyEditRequest{
		Headline: &headline,
		Hashtags: []string{"suya", " #grill night "},
	})
	require.NoError(t, err)

	assert.Equal(t, "Suya Saturday", got.Headline)
	assert.Equal(t, "Come hungry.", got.Body)
	assert.Equal(t, []string{"#suya", "#grillnight"}, got.Hashtags)
	assert.Equal(t, 2, got.Version)
}

func TestPosterService_EditCopyRejectsPosted(t *testing.T) {
	f := newPosterFixture()
	f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(samplePoster(models.PosterStatusPosted), nil)

	_, err := f.svc.EditCopy(context.Background(), 1, "p1", &transfer.CopyEditRequest{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPosterService_Publish(t *testing.T) {
	f := newPosterFixture()
	f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(samplePoster(models.PosterStatusApproved), nil)
	f.posters.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.instagram.On("Publish", mock.Anything, int64(1), "https://cdn.example.com/p1.png", "Come hungry.\n\n#jollof #lagos").
		Return("media-1", nil)

	got, err := f.svc.Publish(context.Background(), 1, "p1")
	require.NoError(t, err)

	assert.Equal(t, models.PosterStatusPosted, got.Status)
	assert.Equal(t, []string{models.ActivityPosterPublished}, f.activity.types())
}

func TestPosterService_PublishFailureLeavesStatus(t *testing.T) {
	f := newPosterFixture()
	f.posters.On("GetByID", mock.Anything, int64(1), "p1").Return(samplePoster(models.PosterStatusApproved), nil)
	f.instagram.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", apperr.Upstream("instagram", "publish media", errors.New("rate limited")))

	_, err := f.svc.Publish(context.Background(), 1, "p1")
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
	f.posters.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, f.activity.types())
}

func TestPosterService_TodayUsesBrandKitTimezone(t *testing.T) {
	f := newPosterFixture()
	f.svc.now = func() time.Time { return time.Date(2025, time.March, 3, 23, 30, 0, 0, time.UTC) }
	kit := (&models.BrandKit{ID: "kit-1", Location: &models.Location{Country: "Nigeria", Timezone: "Africa/Lagos"}}).Normalize()
	f.kits.On("GetByID", mock.Anything, int64(1), "kit-1").Return(kit, nil)
	f.posters.On("GetByDate", mock.Anything, int64(1), "kit-1", "2025-03-04").Return(samplePoster(models.PosterStatusGenerated), true, nil)

	p, found, err := f.svc.Today(context.Background(), 1, "kit-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "p1", p.ID)
}

func TestPosterService_ListNeverNil(t *testing.T) {
	f := newPosterFixture()
	f.posters.On("ListByUserID", mock.Anything, int64(1), "", 50).Return(nil, nil)

	got, err := f.svc.List(context.Background(), 1, "", 50)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
