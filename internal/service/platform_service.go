package service

import (
	"context"
	"fmt"
	"net/url"

	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

const INSTAGRAM_AUTH_URL = "https://www.instagram.com/oauth/authorize"

type PlatformService interface {
	// GetAuthURL builds the consent URL for platform. state is echoed back to the callback.
	GetAuthURL(platform, state string) (string, error)
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	cfg *config.Config
	sa  repository.SocialAccountRepository
	log *logger.Logger
}

func NewPlatformService(cfg *config.Config, sa repository.SocialAccountRepository, log *logger.Logger) PlatformService {
	return &platformService{
		cfg: cfg,
		sa:  sa,
		log: log.With("service", "PlatformService"),
	}
}

func (s *platformService) GetAuthURL(platform, state string) (string, error) {
	switch platform {
	case models.PlatformInstagram:
		params := url.Values{}
		params.Add("client_id", s.cfg.InstagramClientID)
		params.Add("scope", "instagram_business_basic,instagram_business_content_publish")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("state", state)

		return fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode()), nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unsupported platform %q", platform))
	}
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	if userID == 0 {
		return nil, apperr.Auth("user not found")
	}

	accounts, err := s.sa.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*models.SocialAccount{}
	}
	return accounts, nil
}

func (s *platformService) Delete(ctx context.Context, userID, accountID int64) error {
	if accountID == 0 {
		return apperr.Validation("account id is required")
	}

	if err := s.sa.Remove(ctx, userID, accountID); err != nil {
		return err
	}
	s.log.Info("social account removed", "user_id", userID, "account_id", accountID)
	return nil
}
