package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
)

type BrandKitHandler struct {
	s        service.BrandKitService
	validate *validator.Validate
}

func NewBrandKitHandler(service service.BrandKitService, validate *validator.Validate) *BrandKitHandler {
	return &BrandKitHandler{s: service, validate: validate}
}

func (h *BrandKitHandler) List(c *fiber.Ctx) error {
	kits, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(kits)
}

func (h *BrandKitHandler) Get(c *fiber.Ctx) error {
	kit, err := h.s.Get(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(kit)
}

func (h *BrandKitHandler) Create(c *fiber.Ctx) error {
	var req transfer.BrandKitRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}

	kit, err := h.s.Create(c.Context(), GetUserID(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(kit)
}

func (h *BrandKitHandler) Update(c *fiber.Ctx) error {
	var patch transfer.BrandKitPatch
	if err := bindJSON(c, h.validate, &patch); err != nil {
		return err
	}

	kit, err := h.s.Update(c.Context(), GetUserID(c), c.Params("id"), &patch)
	if err != nil {
		return err
	}
	return c.JSON(kit)
}

func (h *BrandKitHandler) Delete(c *fiber.Ctx) error {
	if err := h.s.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
