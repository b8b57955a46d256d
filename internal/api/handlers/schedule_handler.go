package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
)

type ScheduleHandler struct {
	s        service.ScheduleService
	validate *validator.Validate
}

func NewScheduleHandler(service service.ScheduleService, validate *validator.Validate) *ScheduleHandler {
	return &ScheduleHandler{s: service, validate: validate}
}

func (h *ScheduleHandler) Get(c *fiber.Ctx) error {
	s, err := h.s.Get(c.Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(s)
}

func (h *ScheduleHandler) Patch(c *fiber.Ctx) error {
	var patch transfer.SchedulePatch
	if err := bindJSON(c, h.validate, &patch); err != nil {
		return err
	}

	s, err := h.s.Patch(c.Context(), GetUserID(c), &patch)
	if err != nil {
		return err
	}
	return c.JSON(s)
}
