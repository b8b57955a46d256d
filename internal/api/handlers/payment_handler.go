package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/maheshrc27/poster-api/pkg/utils"
)

const SignatureHeader = "X-Snippe-Signature"

type PaymentHandler struct {
	s      service.PaymentService
	secret string
	log    *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, secret string, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{s: service, secret: secret, log: log.With("handler", "PaymentHandler")}
}

func (h *PaymentHandler) PaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if !utils.VerifyHMACSHA256(h.secret, body, c.Get(SignatureHeader)) {
		return apperr.Auth("invalid webhook signature")
	}

	var event transfer.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperr.Validation("invalid webhook payload")
	}
	if event.ID == "" {
		event.ID, _ = gonanoid.New()
	}

	if err := h.s.HandleEvent(c.Context(), &event); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		// Redelivery cannot fix an unknown customer.
		h.log.Warn("payment for unknown user", "event_id", event.ID, "email", event.Data.Customer.Email)
	}

	return c.JSON(fiber.Map{"received": true})
}
