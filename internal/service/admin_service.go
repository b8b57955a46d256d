package service

import (
	"context"

	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

const adminBrandKitKey = "brand_kit"

type AdminService interface {
	GetBrandKit(ctx context.Context) (*models.BrandKit, error)
	// UpdateBrandKit merges the set fields of patch into the stored kit.
	UpdateBrandKit(ctx context.Context, patch *transfer.BrandKitPatch) (*models.BrandKit, error)
	Generate(ctx context.Context, req *transfer.AdminGenerateRequest) (*models.Poster, error)
}

type adminService struct {
	cfg        *config.Config
	store      repository.AdminConfigRepository
	generation GenerationService
	log        *logger.Logger
}

func NewAdminService(cfg *config.Config, store repository.AdminConfigRepository, generation GenerationService, log *logger.Logger) AdminService {
	return &adminService{
		cfg:        cfg,
		store:      store,
		generation: generation,
		log:        log.With("service", "AdminService"),
	}
}

func (s *adminService) GetBrandKit(ctx context.Context) (*models.BrandKit, error) {
	var kit models.BrandKit
	found, err := s.store.Get(ctx, adminBrandKitKey, &kit)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("admin brand kit")
	}
	kit.ID = s.cfg.AdminBrandKitID
	kit.UserID = s.cfg.AdminUserID
	return kit.Normalize(), nil
}

func (s *adminService) UpdateBrandKit(ctx context.Context, patch *transfer.BrandKitPatch) (*models.BrandKit, error) {
	if err := s.store.Merge(ctx, adminBrandKitKey, patch); err != nil {
		return nil, err
	}
	s.log.Info("admin brand kit updated")
	return s.GetBrandKit(ctx)
}

func (s *adminService) Generate(ctx context.Context, req *transfer.AdminGenerateRequest) (*models.Poster, error) {
	if s.cfg.AdminUserID == 0 {
		return nil, apperr.Validation("admin user is not configured")
	}
	kit, err := s.GetBrandKit(ctx)
	if err != nil {
		return nil, err
	}

	return s.generation.Generate(ctx, GenerateRequest{
		UserID:         s.cfg.AdminUserID,
		BrandKitID:     kit.ID,
		BrandKit:       kit,
		FormatID:       req.FormatID,
		Recommendation: req.Recommendation,
		Occasion:       req.Occasion,
		Policy:         models.ImproveAlways,
		DetectOccasion: req.Recommendation == nil && req.Occasion == nil,
		Force:          req.Force,
	})
}
