package job

import (
	"context"
	"time"

	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/schedule"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type SweepItem struct {
	ID       string `json:"id"`
	PosterID string `json:"posterId,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type SweepResult struct {
	OK      bool        `json:"ok"`
	Due     int         `json:"due"`
	Results []SweepItem `json:"results"`
}

type ScheduleSweepJob struct {
	schedules   repository.ScheduleRepository
	brandKits   repository.BrandKitRepository
	generation  service.GenerationService
	policy      models.ImprovePromptPolicy
	maxDuration time.Duration
	log         *logger.Logger
}

func NewScheduleSweepJob(
	schedules repository.ScheduleRepository,
	brandKits repository.BrandKitRepository,
	generation service.GenerationService,
	policy models.ImprovePromptPolicy,
	maxDuration time.Duration,
	log *logger.Logger) *ScheduleSweepJob {
	return &ScheduleSweepJob{
		schedules:   schedules,
		brandKits:   brandKits,
		generation:  generation,
		policy:      policy,
		maxDuration: maxDuration,
		log:         log.With("job", "ScheduleSweep"),
	}
}

// Run executes every schedule due at now, one at a time. Schedules not reached
// before the deadline stay due and are picked up by the next sweep.
func (j *ScheduleSweepJob) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	if j.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.maxDuration)
		defer cancel()
	}

	all, err := j.schedules.ListEnabled(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	due := make([]*models.Schedule, 0, len(all))
	for _, s := range all {
		if s.IsDue(now) {
			due = append(due, s)
		}
	}

	result := SweepResult{OK: true, Due: len(due), Results: make([]SweepItem, 0, len(due))}
	for _, s := range due {
		if ctx.Err() != nil {
			j.log.Warn("sweep deadline reached", "remaining", len(due)-len(result.Results))
			break
		}
		result.Results = append(result.Results, j.runOne(ctx, s, now))
	}

	j.log.Info("sweep finished", "enabled", len(all), "due", len(due), "processed", len(result.Results))
	return result, nil
}

func (j *ScheduleSweepJob) runOne(ctx context.Context, s *models.Schedule, now time.Time) SweepItem {
	item := SweepItem{ID: s.ID}
	log := j.log.With("schedule_id", s.ID, "user_id", s.UserID)

	poster, err := j.generate(ctx, s)
	if err != nil {
		item.Error = err.Error()
		log.Error("scheduled generation failed", "error", err, "kind", apperr.KindOf(err).String())
	} else {
		item.Success = true
		item.PosterID = poster.ID
	}

	if err := j.reschedule(context.WithoutCancel(ctx), s, now); err != nil {
		log.Error("reschedule failed", "error", err)
		if item.Success {
			item.Success = false
			item.Error = err.Error()
		}
	}
	return item
}

func (j *ScheduleSweepJob) generate(ctx context.Context, s *models.Schedule) (*models.Poster, error) {
	kitID := s.BrandKitID
	if kitID == "" {
		kits, err := j.brandKits.ListByUserID(ctx, s.UserID)
		if err != nil {
			return nil, err
		}
		if len(kits) == 0 {
			return nil, apperr.NotFound("brand kit")
		}
		kitID = kits[0].ID
	}

	return j.generation.Generate(ctx, service.GenerateRequest{
		UserID:         s.UserID,
		BrandKitID:     kitID,
		Policy:         j.policy,
		DetectOccasion: true,
	})
}

// reschedule advances nextRunAt one day from the stored value. A schedule that
// fell several days behind jumps to its next future slot instead of running once
// per missed day.
func (j *ScheduleSweepJob) reschedule(ctx context.Context, s *models.Schedule, now time.Time) error {
	prev := now
	if s.NextRunAt != nil {
		prev = *s.NextRunAt
	}
	next, err := schedule.NextRunAfter(prev, s.Time, s.Timezone)
	if err != nil {
		return err
	}
	if !next.After(now) {
		if next, err = schedule.NextRunAt(s.Time, s.Timezone, now.Add(time.Minute)); err != nil {
			return err
		}
	}
	return j.schedules.UpdateRun(ctx, s.ID, next, now)
}
