package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
)

type AdminHandler struct {
	s        service.AdminService
	validate *validator.Validate
}

func NewAdminHandler(service service.AdminService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{s: service, validate: validate}
}

func (h *AdminHandler) GetBrandKit(c *fiber.Ctx) error {
	kit, err := h.s.GetBrandKit(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(kit)
}

func (h *AdminHandler) UpdateBrandKit(c *fiber.Ctx) error {
	var patch transfer.BrandKitPatch
	if err := bindJSON(c, h.validate, &patch); err != nil {
		return err
	}

	kit, err := h.s.UpdateBrandKit(c.Context(), &patch)
	if err != nil {
		return err
	}
	return c.JSON(kit)
}

func (h *AdminHandler) Generate(c *fiber.Ctx) error {
	var req transfer.AdminGenerateRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, h.validate, &req); err != nil {
			return err
		}
	}

	poster, err := h.s.Generate(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(poster)
}
