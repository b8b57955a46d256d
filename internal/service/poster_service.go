package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/schedule"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type PosterService interface {
	List(ctx context.Context, userID int64, brandKitID string, limit int) ([]*models.Poster, error)
	Get(ctx context.Context, userID int64, id string) (*models.Poster, error)
	// Today returns the poster for the brand kit's current local day, if any.
	Today(ctx context.Context, userID int64, brandKitID string) (*models.Poster, bool, error)
	Approve(ctx context.Context, userID int64, id string) (*models.Poster, error)
	Duplicate(ctx context.Context, userID int64, id string) (*models.Poster, error)
	EditCopy(ctx context.Context, userID int64, id string, req *transfer.CopyEditRequest) (*models.Poster, error)
	Publish(ctx context.Context, userID int64, id string) (*models.Poster, error)
}

type posterService struct {
	posters   repository.PosterRepository
	brandKits repository.BrandKitRepository
	instagram InstagramService
	activity  ActivityService
	now       func() time.Time
	log       *logger.Logger
}

func NewPosterService(
	posters repository.PosterRepository,
	brandKits repository.BrandKitRepository,
	instagram InstagramService,
	activity ActivityService,
	log *logger.Logger,
) PosterService {
	return &posterService{
		posters:   posters,
		brandKits: brandKits,
		instagram: instagram,
		activity:  activity,
		now:       time.Now,
		log:       log.With("service", "PosterService"),
	}
}

func (s *posterService) List(ctx context.Context, userID int64, brandKitID string, limit int) ([]*models.Poster, error) {
	posters, err := s.posters.ListByUserID(ctx, userID, brandKitID, limit)
	if err != nil {
		return nil, err
	}
	if posters == nil {
		posters = []*models.Poster{}
	}
	return posters, nil
}

func (s *posterService) Get(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	return s.posters.GetByID(ctx, userID, id)
}

func (s *posterService) Today(ctx context.Context, userID int64, brandKitID string) (*models.Poster, bool, error) {
	kit, err := s.brandKits.GetByID(ctx, userID, brandKitID)
	if err != nil {
		return nil, false, err
	}
	return s.posters.GetByDate(ctx, userID, kit.ID, schedule.LocalDate(s.now(), kit.Timezone()))
}

func (s *posterService) Approve(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	poster, err := s.posters.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	switch poster.Status {
	case models.PosterStatusApproved:
		return poster, nil
	case models.PosterStatusGenerated:
	default:
		return nil, apperr.Validation(fmt.Sprintf("a %s poster cannot be approved", poster.Status))
	}
	if poster.ImageURL == "" {
		return nil, apperr.Validation("poster is still generating")
	}

	poster.Status = models.PosterStatusApproved
	if err := s.posters.Update(ctx, poster); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, models.ActivityPosterApproved, poster.ID, "Poster approved: "+poster.Headline)
	return poster, nil
}

func (s *posterService) Duplicate(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	src, err := s.posters.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if src.Status == models.PosterStatusFailed {
		return nil, apperr.Validation("a failed poster cannot be duplicated")
	}

	dup := &models.Poster{
		ID:         uuid.NewString(),
		UserID:     userID,
		BrandKitID: src.BrandKitID,
		ImageURL:   src.ImageURL,
		Theme:      src.Theme,
		Topic:      src.Topic,
		FormatID:   src.FormatID,
		Status:     models.PosterStatusGenerated,
		Version:    1,
		PostDate:   src.PostDate,
	}
	dup.SetCopy(src.Copy())
	dup.Hashtags = append([]string{}, src.Hashtags...)

	if err := s.posters.Create(ctx, dup); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, models.ActivityPosterDuplicated, dup.ID, "Poster duplicated from "+src.ID)
	return dup, nil
}

func (s *posterService) EditCopy(ctx context.Context, userID int64, id string, req *transfer.CopyEditRequest) (*models.Poster, error) {
	poster, err := s.posters.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if poster.Status == models.PosterStatusPosted {
		return nil, apperr.Validation("a published poster cannot be edited")
	}

	c := poster.Copy()
	req.Apply(&c)
	c.Hashtags = NormalizeHashtags(c.Hashtags)
	poster.SetCopy(c)
	poster.Version++

	if err := s.posters.Update(ctx, poster); err != nil {
		return nil, err
	}
	return poster, nil
}

func (s *posterService) Publish(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	poster, err := s.posters.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	switch poster.Status {
	case models.PosterStatusPosted:
		return nil, apperr.Validation("poster is already published")
	case models.PosterStatusFailed:
		return nil, apperr.Validation("a failed poster cannot be published")
	}

	mediaID, err := s.instagram.Publish(ctx, userID, poster.ImageURL, poster.Caption())
	if err != nil {
		return nil, err
	}

	poster.Status = models.PosterStatusPosted
	if err := s.posters.Update(ctx, poster); err != nil {
		return nil, err
	}
	s.log.Info("poster published", "user_id", userID, "poster_id", poster.ID, "media_id", mediaID)
	s.activity.Record(ctx, userID, models.ActivityPosterPublished, poster.ID, "Poster published to Instagram")
	return poster, nil
}
