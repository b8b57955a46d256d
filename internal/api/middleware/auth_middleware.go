package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/maheshrc27/poster-api/pkg/utils"
)

type AuthMiddleware struct {
	cfg *config.Config
	log *logger.Logger
}

func NewAuthMiddleware(cfg *config.Config, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg, log: log.With("middleware", "auth")}
}

// AuthMiddleware accepts the session cookie or an Authorization bearer token.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		fromCookie := tokenString != ""
		if !fromCookie {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}

		if tokenString == "" {
			return apperr.Auth("missing session token")
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			if fromCookie {
				c.Cookie(&fiber.Cookie{
					Name:   m.cfg.CookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
			}
			m.log.Debug("token validation failed", "error", err)
			return apperr.Auth("invalid or expired token")
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

// RequireSecret guards internal endpoints with a shared secret header. An
// unconfigured secret rejects every request.
func RequireSecret(header, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(header)
		if got == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				got = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return apperr.Auth("invalid secret")
		}
		return c.Next()
	}
}
