package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type ActivityService interface {
	// Record never fails the caller; write errors are logged.
	Record(ctx context.Context, userID int64, kind, posterID, message string)
	List(ctx context.Context, userID int64, limit int) ([]*models.Activity, error)
}

type activityService struct {
	repo repository.ActivityRepository
	log  *logger.Logger
}

func NewActivityService(repo repository.ActivityRepository, log *logger.Logger) ActivityService {
	return &activityService{repo: repo, log: log.With("service", "ActivityService")}
}

func (s *activityService) Record(ctx context.Context, userID int64, kind, posterID, message string) {
	a := &models.Activity{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     kind,
		PosterID: posterID,
		Message:  message,
	}
	if err := s.repo.Create(context.WithoutCancel(ctx), a); err != nil {
		s.log.Warn("record activity failed", "user_id", userID, "type", kind, "error", err)
	}
}

func (s *activityService) List(ctx context.Context, userID int64, limit int) ([]*models.Activity, error) {
	activities, err := s.repo.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []*models.Activity{}
	}
	return activities, nil
}
