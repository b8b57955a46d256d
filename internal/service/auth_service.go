package service

import (
	"context"
	"strconv"
	"time"

	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/maheshrc27/poster-api/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const SessionDuration = 7 * 24 * time.Hour

type AuthService interface {
	AuthURL(state string) string
	// LoginCallback exchanges the Google authorization code and returns a signed
	// session token for the matching (possibly new) user.
	LoginCallback(ctx context.Context, code string) (token string, userID int64, err error)
}

// GoogleProfileFetcher resolves an authorization code to the Google profile.
type GoogleProfileFetcher interface {
	Fetch(ctx context.Context, code string) (*transfer.GoogleUserInfo, error)
}

type googleProfileFetcher struct {
	oauth *oauth2.Config
}

func NewGoogleProfileFetcher(cfg *config.Config) GoogleProfileFetcher {
	return &googleProfileFetcher{oauth: googleOAuthConfig(cfg)}
}

func googleOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{googleoauth.UserinfoEmailScope, googleoauth.UserinfoProfileScope},
		Endpoint:     google.Endpoint,
	}
}

func (f *googleProfileFetcher) Fetch(ctx context.Context, code string) (*transfer.GoogleUserInfo, error) {
	if f.oauth.ClientID == "" || f.oauth.ClientSecret == "" || f.oauth.RedirectURL == "" {
		return nil, apperr.New(apperr.KindInternal, "google_login", "OAuth2 configuration is incomplete", nil)
	}

	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.New(apperr.KindAuth, "google_login", "code exchange failed", err)
	}

	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(f.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, apperr.Upstream("google_login", "fetch user info", err)
	}

	verified := info.VerifiedEmail != nil && *info.VerifiedEmail
	return &transfer.GoogleUserInfo{
		ID:            info.Id,
		Email:         info.Email,
		VerifiedEmail: verified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

type authService struct {
	cfg     *config.Config
	u       repository.UserRepository
	profile GoogleProfileFetcher
	log     *logger.Logger
}

func NewAuthService(cfg *config.Config, u repository.UserRepository, profile GoogleProfileFetcher, log *logger.Logger) AuthService {
	return &authService{
		cfg:     cfg,
		u:       u,
		profile: profile,
		log:     log.With("service", "AuthService"),
	}
}

func (s *authService) AuthURL(state string) string {
	return googleOAuthConfig(s.cfg).AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s *authService) LoginCallback(ctx context.Context, code string) (string, int64, error) {
	if code == "" {
		return "", 0, apperr.Validation("authorization code is empty")
	}

	info, err := s.profile.Fetch(ctx, code)
	if err != nil {
		return "", 0, err
	}
	if info.Email == "" {
		return "", 0, apperr.Auth("google account has no email")
	}

	user, found, err := s.u.GetByEmail(ctx, info.Email)
	if err != nil {
		return "", 0, err
	}

	var userID int64
	switch {
	case !found:
		userID, err = s.u.Create(ctx, nil, &models.User{
			GoogleID:       info.ID,
			Email:          info.Email,
			Name:           info.Name,
			ProfilePicture: info.Picture,
		})
		if err != nil {
			return "", 0, err
		}
		s.log.Info("user created", "user_id", userID)
	case user.GoogleID == "":
		// An account that predates Google sign-in is linked on first login.
		user.GoogleID = info.ID
		user.Name = info.Name
		user.ProfilePicture = info.Picture
		if err := s.u.Update(ctx, user); err != nil {
			return "", 0, err
		}
		userID = user.ID
	default:
		userID = user.ID
	}

	token, err := utils.GenerateToken(s.cfg.SecretKey, strconv.FormatInt(userID, 10), SessionDuration)
	if err != nil {
		return "", 0, err
	}
	return token, userID, nil
}
