package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/service"
)

const maxListLimit = 100

type ActivityHandler struct {
	s service.ActivityService
}

func NewActivityHandler(service service.ActivityService) *ActivityHandler {
	return &ActivityHandler{s: service}
}

func (h *ActivityHandler) List(c *fiber.Ctx) error {
	activities, err := h.s.List(c.Context(), GetUserID(c), listLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(activities)
}

func listLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}
