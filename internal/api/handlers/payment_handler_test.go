package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/maheshrc27/poster-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

const completedPayload = `{"id":"evt_1","type":"payment.completed","data":{"reference":"ref","customer":{"email":"ada@example.com"},"metadata":{"user_id":"7","plan":"pro"}}}`

func webhookRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	return req
}

func newPaymentApp(svc *MockPaymentService) *fiber.App {
	h := NewPaymentHandler(svc, webhookSecret, logger.Nop())
	return newTestApp("", func(app *fiber.App) {
		app.Post("/webhooks/payments", h.PaymentWebhook)
	})
}

func TestPaymentWebhook_Signature(t *testing.T) {
	tests := []struct {
		name       string
		signature  string
		wantStatus int
		wantCalled bool
	}{
		{name: "valid", signature: utils.SignHMACSHA256(webhookSecret, []byte(completedPayload)), wantStatus: fiber.StatusOK, wantCalled: true},
		{name: "prefixed", signature: "sha256=" + utils.SignHMACSHA256(webhookSecret, []byte(completedPayload)), wantStatus: fiber.StatusOK, wantCalled: true},
		{name: "wrong secret", signature: utils.SignHMACSHA256("other", []byte(completedPayload)), wantStatus: fiber.StatusUnauthorized},
		{name: "missing", signature: "", wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPaymentService)
			svc.On("HandleEvent", mock.Anything, mock.Anything).Return(nil)

			resp, err := newPaymentApp(svc).Test(webhookRequest(completedPayload, tt.signature))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCalled {
				svc.AssertCalled(t, "HandleEvent", mock.Anything, mock.MatchedBy(func(e *transfer.PaymentEvent) bool {
					return e.ID == "evt_1" && e.Data.Metadata.UserID == "7"
				}))
			} else {
				svc.AssertNotCalled(t, "HandleEvent", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPaymentWebhook_UnknownUserIsAcknowledged(t *testing.T) {
	svc := new(MockPaymentService)
	svc.On("HandleEvent", mock.Anything, mock.Anything).Return(apperr.NotFound("user"))

	sig := utils.SignHMACSHA256(webhookSecret, []byte(completedPayload))
	resp, err := newPaymentApp(svc).Test(webhookRequest(completedPayload, sig))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPaymentWebhook_BadPayload(t *testing.T) {
	svc := new(MockPaymentService)
	body := `{"id":`
	resp, err := newPaymentApp(svc).Test(webhookRequest(body, utils.SignHMACSHA256(webhookSecret, []byte(body))))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
