package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type OnboardingResult struct {
	BrandKit *models.BrandKit `json:"brand_kit"`
	Schedule *models.Schedule `json:"schedule"`
}

type OnboardingService interface {
	// Complete creates the first brand kit, marks the user onboarded and creates
	// a disabled 08:00 schedule targeting the kit, atomically.
	Complete(ctx context.Context, userID int64, req *transfer.OnboardingRequest) (*OnboardingResult, error)
}

type onboardingService struct {
	db        *sql.DB
	users     repository.UserRepository
	brandKits repository.BrandKitRepository
	schedules repository.ScheduleRepository
	log       *logger.Logger
}

func NewOnboardingService(
	db *sql.DB,
	users repository.UserRepository,
	brandKits repository.BrandKitRepository,
	schedules repository.ScheduleRepository,
	log *logger.Logger,
) OnboardingService {
	return &onboardingService{
		db:        db,
		users:     users,
		brandKits: brandKits,
		schedules: schedules,
		log:       log.With("service", "OnboardingService"),
	}
}

func (s *onboardingService) Complete(ctx context.Context, userID int64, req *transfer.OnboardingRequest) (result *OnboardingResult, err error) {
	kit := req.BrandKit.ToModel()
	kit.ID = uuid.NewString()
	kit.UserID = userID
	kit.Normalize()

	sched := DefaultSchedule(userID, kit.ID, kit.Timezone())
	sched.ID = uuid.NewString()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.brandKits.Create(ctx, tx, kit); err != nil {
		return nil, err
	}
	if err = s.users.SetOnboarded(ctx, tx, userID); err != nil {
		return nil, err
	}
	if err = s.schedules.Upsert(ctx, tx, sched); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit onboarding: %w", err)
	}

	s.log.Info("user onboarded", "user_id", userID, "brand_kit_id", kit.ID)
	return &OnboardingResult{BrandKit: kit, Schedule: sched}, nil
}
