package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
)

type OnboardingHandler struct {
	s        service.OnboardingService
	validate *validator.Validate
}

func NewOnboardingHandler(service service.OnboardingService, validate *validator.Validate) *OnboardingHandler {
	return &OnboardingHandler{s: service, validate: validate}
}

func (h *OnboardingHandler) Complete(c *fiber.Ctx) error {
	var req transfer.OnboardingRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}

	res, err := h.s.Complete(c.Context(), GetUserID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
