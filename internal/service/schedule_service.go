package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/schedule"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

const (
	defaultScheduleTime     = "08:00"
	defaultScheduleTimezone = "UTC"
)

type ScheduleService interface {
	// Get returns the user's schedule, or an unsaved disabled default.
	Get(ctx context.Context, userID int64) (*models.Schedule, error)
	Patch(ctx context.Context, userID int64, patch *transfer.SchedulePatch) (*models.Schedule, error)
}

type scheduleService struct {
	schedules repository.ScheduleRepository
	brandKits repository.BrandKitRepository
	now       func() time.Time
	log       *logger.Logger
}

func NewScheduleService(schedules repository.ScheduleRepository, brandKits repository.BrandKitRepository, log *logger.Logger) ScheduleService {
	return &scheduleService{
		schedules: schedules,
		brandKits: brandKits,
		now:       time.Now,
		log:       log.With("service", "ScheduleService"),
	}
}

// DefaultSchedule is the disabled schedule a new user starts with.
func DefaultSchedule(userID int64, brandKitID, timezone string) *models.Schedule {
	if _, err := schedule.LoadZone(timezone); err != nil {
		timezone = defaultScheduleTimezone
	}
	return &models.Schedule{
		UserID:     userID,
		Enabled:    false,
		Time:       defaultScheduleTime,
		Timezone:   timezone,
		BrandKitID: brandKitID,
	}
}

func (s *scheduleService) Get(ctx context.Context, userID int64) (*models.Schedule, error) {
	sched, found, err := s.schedules.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return DefaultSchedule(userID, "", ""), nil
	}
	return sched, nil
}

func (s *scheduleService) Patch(ctx context.Context, userID int64, patch *transfer.SchedulePatch) (*models.Schedule, error) {
	sched, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}

	wasEnabled, prevTime, prevTZ := sched.Enabled, sched.Time, sched.Timezone

	if patch.Time != nil {
		slot, err := schedule.SnapToSlot(*patch.Time)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		sched.Time = slot
	}
	if patch.Timezone != nil {
		if _, err := schedule.LoadZone(*patch.Timezone); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		sched.Timezone = *patch.Timezone
	}
	if patch.BrandKitID != nil {
		if *patch.BrandKitID != "" {
			if _, err := s.brandKits.GetByID(ctx, userID, *patch.BrandKitID); err != nil {
				return nil, err
			}
		}
		sched.BrandKitID = *patch.BrandKitID
	}
	if patch.NotifyEmail != nil {
		sched.NotifyEmail = *patch.NotifyEmail
	}
	if patch.NotifySMS != nil {
		sched.NotifySMS = *patch.NotifySMS
	}
	if patch.Enabled != nil {
		sched.Enabled = *patch.Enabled
	}

	switch {
	case !sched.Enabled:
		sched.NextRunAt = nil
	case !wasEnabled || sched.Time != prevTime || sched.Timezone != prevTZ || sched.NextRunAt == nil:
		next, err := schedule.NextRunAt(sched.Time, sched.Timezone, s.now())
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		sched.NextRunAt = &next
	}

	if err := s.schedules.Upsert(ctx, nil, sched); err != nil {
		return nil, err
	}
	s.log.Info("schedule saved", "user_id", userID, "enabled", sched.Enabled, "time", sched.Time, "timezone", sched.Timezone)
	return sched, nil
}
