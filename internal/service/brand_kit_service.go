package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type BrandKitService interface {
	List(ctx context.Context, userID int64) ([]*models.BrandKit, error)
	Get(ctx context.Context, userID int64, id string) (*models.BrandKit, error)
	Create(ctx context.Context, userID int64, req *transfer.BrandKitRequest) (*models.BrandKit, error)
	Update(ctx context.Context, userID int64, id string, patch *transfer.BrandKitPatch) (*models.BrandKit, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type brandKitService struct {
	repo repository.BrandKitRepository
	log  *logger.Logger
}

func NewBrandKitService(repo repository.BrandKitRepository, log *logger.Logger) BrandKitService {
	return &brandKitService{repo: repo, log: log.With("service", "BrandKitService")}
}

func (s *brandKitService) List(ctx context.Context, userID int64) ([]*models.BrandKit, error) {
	kits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if kits == nil {
		kits = []*models.BrandKit{}
	}
	return kits, nil
}

func (s *brandKitService) Get(ctx context.Context, userID int64, id string) (*models.BrandKit, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *brandKitService) Create(ctx context.Context, userID int64, req *transfer.BrandKitRequest) (*models.BrandKit, error) {
	kit := req.ToModel()
	kit.ID = uuid.NewString()
	kit.UserID = userID
	kit.Normalize()

	if err := s.repo.Create(ctx, nil, kit); err != nil {
		return nil, err
	}
	s.log.Info("brand kit created", "user_id", userID, "brand_kit_id", kit.ID)
	return kit, nil
}

func (s *brandKitService) Update(ctx context.Context, userID int64, id string, patch *transfer.BrandKitPatch) (*models.BrandKit, error) {
	kit, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(kit)
	kit.Normalize()

	if err := s.repo.Update(ctx, kit); err != nil {
		return nil, err
	}
	return kit, nil
}

func (s *brandKitService) Delete(ctx context.Context, userID int64, id string) error {
	if err := s.repo.Remove(ctx, userID, id); err != nil {
		return err
	}
	s.log.Info("brand kit deleted", "user_id", userID, "brand_kit_id", id)
	return nil
}
