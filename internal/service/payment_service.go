package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

type PaymentService interface {
	// HandleEvent applies a verified webhook event. Unknown event types are ignored.
	HandleEvent(ctx context.Context, event *transfer.PaymentEvent) error
}

type paymentService struct {
	u        repository.UserRepository
	activity ActivityService
	log      *logger.Logger
}

func NewPaymentService(u repository.UserRepository, activity ActivityService, log *logger.Logger) PaymentService {
	return &paymentService{
		u:        u,
		activity: activity,
		log:      log.With("service", "PaymentService"),
	}
}

func (s *paymentService) HandleEvent(ctx context.Context, event *transfer.PaymentEvent) error {
	if event.Type != transfer.PaymentCompleted {
		s.log.Info("ignoring payment event", "event_id", event.ID, "type", event.Type)
		return nil
	}

	user, err := s.resolveUser(ctx, &event.Data)
	if err != nil {
		return err
	}

	plan := strings.ToLower(strings.TrimSpace(event.Data.Metadata.Plan))
	if !models.IsKnownPlan(plan) || plan == models.PlanFree {
		plan = models.PlanPro
	}

	if err := s.u.UpdatePlan(ctx, user.ID, plan); err != nil {
		return err
	}

	s.log.Info("plan upgraded", "user_id", user.ID, "plan", plan, "event_id", event.ID, "reference", event.Data.Reference)
	s.activity.Record(ctx, user.ID, models.ActivityPlanUpgraded, "", "Plan upgraded to "+plan)
	return nil
}

// resolveUser prefers the user id carried in metadata and falls back to the customer email.
func (s *paymentService) resolveUser(ctx context.Context, data *transfer.PaymentData) (*models.User, error) {
	if raw := strings.TrimSpace(data.Metadata.UserID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, apperr.Validation("invalid metadata user_id")
		}
		user, found, err := s.u.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			return user, nil
		}
	}

	if data.Customer.Email == "" {
		return nil, apperr.NotFound("user")
	}
	user, found, err := s.u.GetByEmail(ctx, data.Customer.Email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}
