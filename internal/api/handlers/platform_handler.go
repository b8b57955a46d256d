package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/pkg/utils"
)

const connectStateTTL = 10 * time.Minute

type PlatformHandler struct {
	ps  service.PlatformService
	ig  service.InstagramService
	cfg *config.Config
}

func NewPlatformHandler(ps service.PlatformService, ig service.InstagramService, cfg *config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:  ps,
		ig:  ig,
		cfg: cfg,
	}
}

// AddSocialAccount redirects to the platform consent page. The state is a
// short-lived token identifying the user on the way back.
func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	state, err := utils.GenerateToken(h.cfg.SecretKey, strconv.FormatInt(GetUserID(c), 10), connectStateTTL)
	if err != nil {
		return err
	}
	authURL, err := h.ps.GetAuthURL(c.Params("platform"), state)
	if err != nil {
		return err
	}
	return c.Redirect(authURL)
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	claims, err := utils.ValidateToken(h.cfg.SecretKey, c.Query("state"))
	if err != nil {
		return apperr.Auth("unable to validate user")
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return apperr.Auth("unable to validate user")
	}

	switch c.Params("platform") {
	case models.PlatformInstagram:
		if err := h.ig.InstagramCallback(c.Context(), c.Query("code"), userID); err != nil {
			return err
		}
	default:
		return apperr.Validation("unsupported platform")
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	accountList, err := h.ps.List(c.Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	accountID := c.QueryInt("id", 0)
	if err := h.ps.Delete(c.Context(), GetUserID(c), int64(accountID)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}
