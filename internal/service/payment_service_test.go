package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func completedEvent(userID, email, plan string) *transfer.PaymentEvent {
	return &transfer.PaymentEvent{
		ID:   "evt_1",
		Type: transfer.PaymentCompleted,
		Data: transfer.PaymentData{
			Reference: "ref_1",
			Customer:  transfer.PaymentCustomer{Email: email},
			Metadata:  transfer.PaymentMetadata{UserID: userID, Plan: plan},
		},
	}
}

func TestPaymentService_HandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    *transfer.PaymentEvent
		setup    func(u *MockUserRepository)
		wantPlan string
		wantUser int64
		wantKind error
	}{
		{
			name:  "metadata user id",
			event: completedEvent("7", "", "business"),
			setup: func(u *MockUserRepository) {
				u.On("GetByID", mock.Anything, int64(7)).Return(&models.User{ID: 7}, true, nil)
			},
			wantPlan: models.PlanBusiness,
			wantUser: 7,
		},
		{
			name:  "falls back to customer email",
			event: completedEvent("", "ada@example.com", ""),
			setup: func(u *MockUserRepository) {
				u.On("GetByEmail", mock.Anything, "ada@example.com").Return(&models.User{ID: 9}, true, nil)
			},
			wantPlan: models.PlanPro,
			wantUser: 9,
		},
		{
			name:  "unknown metadata user uses email",
			event: completedEvent("404", "ada@example.com", "PRO"),
			setup: func(u *MockUserRepository) {
				u.On("GetByID", mock.Anything, int64(404)).Return(nil, false, nil)
				u.On("GetByEmail", mock.Anything, "ada@example.com").Return(&models.User{ID: 9}, true, nil)
			},
			wantPlan: models.PlanPro,
			wantUser: 9,
		},
		{
			name:     "malformed user id",
			event:    completedEvent("abc", "", ""),
			setup:    func(*MockUserRepository) {},
			wantKind: apperr.ErrValidation,
		},
		{
			name:  "no matching user",
			event: completedEvent("", "ghost@example.com", ""),
			setup: func(u *MockUserRepository) {
				u.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, false, nil)
			},
			wantKind: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			users.On("UpdatePlan", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			tt.setup(users)
			activity := &fakeActivity{}

			svc := NewPaymentService(users, activity, logger.Nop())
			err := svc.HandleEvent(context.Background(), tt.event)

			if tt.wantKind != nil {
				assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
				users.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			users.AssertCalled(t, "UpdatePlan", mock.Anything, tt.wantUser, tt.wantPlan)
			assert.Equal(t, []string{models.ActivityPlanUpgraded}, activity.types())
		})
	}
}

func TestPaymentService_IgnoresOtherEvents(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewPaymentService(users, &fakeActivity{}, logger.Nop())

	err := svc.HandleEvent(context.Background(), &transfer.PaymentEvent{ID: "evt_2", Type: "payment.failed"})
	require.NoError(t, err)
	users.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything, mock.Anything)
}
