package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/maheshrc27/poster-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeProfileFetcher struct {
	info *transfer.GoogleUserInfo
	err  error
}

func (f fakeProfileFetcher) Fetch(context.Context, string) (*transfer.GoogleUserInfo, error) {
	return f.info, f.err
}

func authConfig() *config.Config {
	return &config.Config{
		SecretKey:          "test-secret",
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURI:  "http://localhost:3000/login/callback",
	}
}

var adaProfile = &transfer.GoogleUserInfo{ID: "g-1", Email: "ada@example.com", VerifiedEmail: true, Name: "Ada", Picture: "https://img/ada.png"}

func TestAuthService_CreatesNewUser(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, false, nil)
	users.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.GoogleID == "g-1" && u.Name == "Ada"
	})).Return(int64(12), nil)

	svc := NewAuthService(authConfig(), users, fakeProfileFetcher{info: adaProfile}, logger.Nop())
	token, userID, err := svc.LoginCallback(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(12), userID)

	claims, err := utils.ValidateToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "12", claims.UserID)
}

func TestAuthService_LinksExistingAccount(t *testing.T) {
	existing := &models.User{ID: 3, Email: "ada@example.com", Plan: models.PlanPro}
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(existing, true, nil)
	users.On("Update", mock.Anything, existing).Return(nil)

	svc := NewAuthService(authConfig(), users, fakeProfileFetcher{info: adaProfile}, logger.Nop())
	_, userID, err := svc.LoginCallback(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, int64(3), userID)
	assert.Equal(t, "g-1", existing.GoogleID)
	assert.Equal(t, models.PlanPro, existing.Plan)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ReturningUser(t *testing.T) {
	existing := &models.User{ID: 3, GoogleID: "g-1", Email: "ada@example.com"}
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(existing, true, nil)

	svc := NewAuthService(authConfig(), users, fakeProfileFetcher{info: adaProfile}, logger.Nop())
	_, userID, err := svc.LoginCallback(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(3), userID)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		fetcher fakeProfileFetcher
		want    error
	}{
		{name: "empty code", code: "", want: apperr.ErrValidation},
		{name: "exchange failure", code: "c", fetcher: fakeProfileFetcher{err: apperr.New(apperr.KindAuth, "google_login", "code exchange failed", errors.New("bad code"))}, want: apperr.ErrAuth},
		{name: "no email", code: "c", fetcher: fakeProfileFetcher{info: &transfer.GoogleUserInfo{ID: "g-2"}}, want: apperr.ErrAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(authConfig(), new(MockUserRepository), tt.fetcher, logger.Nop())
			_, _, err := svc.LoginCallback(context.Background(), tt.code)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAuthService_AuthURL(t *testing.T) {
	svc := NewAuthService(authConfig(), new(MockUserRepository), fakeProfileFetcher{}, logger.Nop())
	u := svc.AuthURL("state-123")

	assert.True(t, strings.HasPrefix(u, "https://accounts.google.com/"))
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-123")
}
