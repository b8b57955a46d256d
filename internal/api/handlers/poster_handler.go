package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/queue"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

const (
	eventsTimeout   = 10 * time.Minute
	eventsHeartbeat = 15 * time.Second
)

type PosterHandler struct {
	posters    service.PosterService
	generation service.GenerationService
	status     service.StatusService
	enqueuer   queue.Enqueuer
	policy     models.ImprovePromptPolicy
	validate   *validator.Validate
	log        *logger.Logger
}

func NewPosterHandler(
	posters service.PosterService,
	generation service.GenerationService,
	status service.StatusService,
	enqueuer queue.Enqueuer,
	policy models.ImprovePromptPolicy,
	validate *validator.Validate,
	log *logger.Logger,
) *PosterHandler {
	return &PosterHandler{
		posters:    posters,
		generation: generation,
		status:     status,
		enqueuer:   enqueuer,
		policy:     policy,
		validate:   validate,
		log:        log.With("handler", "PosterHandler"),
	}
}

func (h *PosterHandler) List(c *fiber.Ctx) error {
	posters, err := h.posters.List(c.Context(), GetUserID(c), c.Query("brandKitId"), listLimit(c))
	if err != nil {
		return err
	}
	return c.JSON(posters)
}

func (h *PosterHandler) Get(c *fiber.Ctx) error {
	poster, err := h.posters.Get(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(poster)
}

func (h *PosterHandler) Today(c *fiber.Ctx) error {
	brandKitID := c.Query("brandKitId")
	if brandKitID == "" {
		return apperr.Validation("brandKitId is required")
	}

	poster, found, err := h.posters.Today(c.Context(), GetUserID(c), brandKitID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("poster for today")
	}
	return c.JSON(poster)
}

// Generate creates the poster and hands the pipeline to the worker. The client
// follows progress through the status and events endpoints.
func (h *PosterHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}

	genReq := service.GenerateRequest{
		UserID:         GetUserID(c),
		BrandKitID:     req.BrandKitID,
		FormatID:       req.FormatID,
		Recommendation: req.Recommendation,
		Occasion:       req.Occasion,
		Policy:         h.policy,
		Force:          req.Force,
	}

	poster, existing, err := h.generation.Start(c.Context(), genReq)
	if err != nil {
		return err
	}
	if existing {
		return c.Status(fiber.StatusOK).JSON(transfer.GenerateResponse{
			PosterID: poster.ID,
			Existing: true,
			Status:   poster.Status,
		})
	}

	if err := h.enqueuer.EnqueueGeneration(queue.GeneratePosterPayload{PosterID: poster.ID, Request: genReq}); err != nil {
		h.log.Warn("enqueue failed, running in process", "poster_id", poster.ID, "error", err)
		go func() {
			if _, err := h.generation.Run(context.Background(), poster.ID, genReq); err != nil {
				h.log.Error("in-process generation failed", "poster_id", poster.ID, "error", err)
			}
		}()
	}

	return c.Status(fiber.StatusAccepted).JSON(transfer.GenerateResponse{
		PosterID: poster.ID,
		Status:   string(models.GenerationPending),
	})
}

func (h *PosterHandler) Status(c *fiber.Ctx) error {
	userID := GetUserID(c)
	posterID := c.Params("id")

	update, found, err := h.status.Get(c.Context(), userID, posterID)
	if err != nil {
		return err
	}
	if found {
		return c.JSON(update)
	}

	poster, err := h.posters.Get(c.Context(), userID, posterID)
	if err != nil {
		return err
	}
	return c.JSON(statusFromPoster(poster))
}

// Events streams live status updates as server-sent events until the run
// finishes, the client disconnects or the stream times out.
func (h *PosterHandler) Events(c *fiber.Ctx) error {
	userID := GetUserID(c)
	poster, err := h.posters.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventsTimeout)
	updates, unsubscribe, err := h.status.Subscribe(ctx, userID, poster.ID)
	if err != nil {
		cancel()
		return err
	}
	current, found, err := h.status.Get(ctx, userID, poster.ID)
	if err != nil {
		unsubscribe()
		cancel()
		return err
	}
	if !found {
		current = statusFromPoster(poster)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		if err := writeStatusEvent(w, current); err != nil || current.Status.Done() {
			return
		}

		heartbeat := time.NewTicker(eventsHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case update, ok := <-updates:
				if !ok {
					return
				}
				if err := writeStatusEvent(w, &update); err != nil || update.Status.Done() {
					return
				}
			}
		}
	})
	return nil
}

func (h *PosterHandler) Approve(c *fiber.Ctx) error {
	poster, err := h.posters.Approve(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(poster)
}

func (h *PosterHandler) Duplicate(c *fiber.Ctx) error {
	poster, err := h.posters.Duplicate(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(poster)
}

func (h *PosterHandler) EditCopy(c *fiber.Ctx) error {
	var req transfer.CopyEditRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}

	poster, err := h.posters.EditCopy(c.Context(), GetUserID(c), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(poster)
}

func (h *PosterHandler) Publish(c *fiber.Ctx) error {
	poster, err := h.posters.Publish(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(poster)
}

// statusFromPoster reconstructs a status once the live key has expired.
func statusFromPoster(p *models.Poster) *models.GenerationStatusUpdate {
	u := &models.GenerationStatusUpdate{PosterID: p.ID, UpdatedAt: p.UpdatedAt}
	switch {
	case p.Status == models.PosterStatusFailed:
		u.Status = models.GenerationFailed
		u.Message = p.Error
	case p.ImageURL != "":
		u.Status = models.GenerationComplete
		u.Progress = 100
		u.Message = "Poster ready"
	default:
		u.Status = models.GenerationPending
	}
	return u
}

func writeStatusEvent(w *bufio.Writer, u *models.GenerationStatusUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
