package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/maheshrc27/poster-api/pkg/utils"
)

const (
	instagramOAuthURL = "https://api.instagram.com"
	instagramGraphURL = "https://graph.instagram.com"
	instagramVersion  = "v21.0"

	opInstagram = "instagram"
)

type InstagramService interface {
	InstagramCallback(ctx context.Context, code string, userID int64) error
	RefreshInstagramToken(ctx context.Context, userID int64, refreshToken string) error
	// Publish posts imageURL with caption to the user's connected account and
	// returns the published media id.
	Publish(ctx context.Context, userID int64, imageURL, caption string) (string, error)
}

type instagramService struct {
	cfg      *config.Config
	sa       repository.SocialAccountRepository
	client   *http.Client
	oauthURL string
	graphURL string
	log      *logger.Logger
}

func NewInstagramService(cfg *config.Config, sa repository.SocialAccountRepository, log *logger.Logger) InstagramService {
	return &instagramService{
		cfg:      cfg,
		sa:       sa,
		client:   &http.Client{Timeout: 30 * time.Second},
		oauthURL: instagramOAuthURL,
		graphURL: instagramGraphURL,
		log:      log.With("service", "InstagramService"),
	}
}

// withEndpoints points the service at alternative OAuth and Graph hosts.
func (ig *instagramService) withEndpoints(client *http.Client, oauthURL, graphURL string) *instagramService {
	ig.client = client
	ig.oauthURL = strings.TrimRight(oauthURL, "/")
	ig.graphURL = strings.TrimRight(graphURL, "/")
	return ig
}

func (ig *instagramService) InstagramCallback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		return apperr.Validation("authorization code is empty")
	}
	if userID == 0 {
		return apperr.Auth("user not found")
	}

	token, err := ig.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := ig.getUserInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(ig.cfg.EncryptionKey))
	if err != nil {
		return fmt.Errorf("encrypt instagram token: %w", err)
	}

	account := &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformInstagram,
		AccountID:       userInfo.ID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Username,
		ProfilePicture:  userInfo.ProfilePicture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedAccessToken,
		TokenExpiresAt:  token.ExpiresAt,
	}
	if _, err := ig.sa.Create(ctx, nil, account); err != nil {
		return err
	}

	ig.log.Info("instagram account connected", "user_id", userID, "account", userInfo.Username)
	return nil
}

func (ig *instagramService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.InstagramConnection, error) {
	data := url.Values{}
	data.Set("client_id", ig.cfg.InstagramClientID)
	data.Set("client_secret", ig.cfg.InstagramClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", ig.cfg.InstagramRedirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ig.oauthURL+"/oauth/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var short transfer.InstagramShortToken
	if err := ig.doJSON(req, &short); err != nil {
		return nil, fmt.Errorf("failed to get short-lived token: %w", err)
	}

	params := url.Values{}
	params.Set("grant_type", "ig_exchange_token")
	params.Set("client_secret", ig.cfg.InstagramClientSecret)
	params.Set("access_token", short.AccessToken)
	long, err := ig.tokenRequest(ctx, "/access_token?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}

	return &transfer.InstagramConnection{
		UserID:      short.UserID,
		AccessToken: long.AccessToken,
		ExpiresAt:   tokenExpiry(long.ExpiresIn),
	}, nil
}

func tokenExpiry(expiresIn int64) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func (ig *instagramService) tokenRequest(ctx context.Context, path string) (*transfer.InstagramTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ig.graphURL+path, nil)
	if err != nil {
		return nil, err
	}
	var result transfer.InstagramTokenResponse
	if err := ig.doJSON(req, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, errors.New("instagram returned no access token")
	}
	return &result, nil
}

func (ig *instagramService) getUserInfo(ctx context.Context, accessToken string) (*transfer.InstagramProfile, error) {
	params := url.Values{}
	params.Set("fields", "id,username,name,account_type,profile_picture_url")
	params.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ig.graphURL+"/me?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var userInfo transfer.InstagramProfile
	if err := ig.doJSON(req, &userInfo); err != nil {
		return nil, fmt.Errorf("get instagram user info: %w", err)
	}
	return &userInfo, nil
}

func (ig *instagramService) RefreshInstagramToken(ctx context.Context, userID int64, refreshToken string) error {
	decrypted, err := utils.Decrypt(refreshToken, []byte(ig.cfg.EncryptionKey))
	if err != nil {
		return fmt.Errorf("decrypt instagram token: %w", err)
	}

	params := url.Values{}
	params.Set("grant_type", "ig_refresh_token")
	params.Set("access_token", decrypted)
	result, err := ig.tokenRequest(ctx, "/refresh_access_token?"+params.Encode())
	if err != nil {
		return fmt.Errorf("refresh instagram token: %w", err)
	}

	encrypted, err := utils.Encrypt([]byte(result.AccessToken), []byte(ig.cfg.EncryptionKey))
	if err != nil {
		return fmt.Errorf("encrypt instagram token: %w", err)
	}

	return ig.sa.SetToken(ctx, userID, refreshToken, &models.SocialAccount{
		AccessToken:    encrypted,
		RefreshToken:   encrypted,
		TokenExpiresAt: tokenExpiry(result.ExpiresIn),
	})
}

func (ig *instagramService) Publish(ctx context.Context, userID int64, imageURL, caption string) (string, error) {
	if imageURL == "" {
		return "", apperr.Validation("poster has no image to publish")
	}

	acc, err := ig.sa.GetByUserAndPlatform(ctx, userID, models.PlatformInstagram)
	if err != nil {
		return "", err
	}
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(ig.cfg.EncryptionKey))
	if err != nil {
		return "", fmt.Errorf("decrypt instagram token: %w", err)
	}

	containerID, err := ig.graphPost(ctx, fmt.Sprintf("/%s/%s/media", instagramVersion, acc.AccountID), map[string]any{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": accessToken,
	})
	if err != nil {
		return "", apperr.Upstream(opInstagram, "create media container", err)
	}

	mediaID, err := ig.graphPost(ctx, fmt.Sprintf("/%s/%s/media_publish", instagramVersion, acc.AccountID), map[string]any{
		"creation_id":  containerID,
		"access_token": accessToken,
	})
	if err != nil {
		return "", apperr.Upstream(opInstagram, "publish media", err)
	}

	ig.log.Info("published to instagram", "user_id", userID, "media_id", mediaID)
	return mediaID, nil
}

func (ig *instagramService) graphPost(ctx context.Context, path string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ig.graphURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result transfer.InstagramMedia
	if err := ig.doJSON(req, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.New("no media ID returned from Instagram")
	}
	return result.ID, nil
}

func (ig *instagramService) doJSON(req *http.Request, dst any) error {
	resp, err := ig.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var igErr transfer.InstagramGraphError
		if json.Unmarshal(raw, &igErr) == nil && igErr.Error.Message != "" {
			return fmt.Errorf("instagram error (status %d): %s", resp.StatusCode, igErr.Error.Message)
		}
		return fmt.Errorf("unexpected status code from Instagram: %d: %s", resp.StatusCode, logger.Truncate(string(raw), 300))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
