package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	job "github.com/maheshrc27/poster-api/internal/jobs"
)

// Sweeper runs one schedule sweep.
type Sweeper interface {
	Run(ctx context.Context, now time.Time) (job.SweepResult, error)
}

type CronHandler struct {
	sweep Sweeper
}

func NewCronHandler(sweep Sweeper) *CronHandler {
	return &CronHandler{sweep: sweep}
}

func (h *CronHandler) Sweep(c *fiber.Ctx) error {
	res, err := h.sweep.Run(c.Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(res)
}
