package job

import (
	"context"
	"sync"
	"time"

	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

// DefaultRefreshWindow is how far ahead of expiry Instagram tokens are renewed.
const DefaultRefreshWindow = 7 * 24 * time.Hour

type TokenRefreshJob struct {
	sr     repository.SocialAccountRepository
	ig     service.InstagramService
	window time.Duration
	log    *logger.Logger
}

func NewTokenRefreshJob(
	sr repository.SocialAccountRepository,
	ig service.InstagramService,
	window time.Duration,
	log *logger.Logger) *TokenRefreshJob {
	if window <= 0 {
		window = DefaultRefreshWindow
	}
	return &TokenRefreshJob{
		sr:     sr,
		ig:     ig,
		window: window,
		log:    log.With("job", "TokenRefresh"),
	}
}

// RefreshTokens renews every connected account whose token expires within the
// window and returns the number refreshed.
func (c *TokenRefreshJob) RefreshTokens(ctx context.Context) int {
	currentTime := time.Now()

	accounts, err := c.sr.ListByTimeInterval(ctx, currentTime, currentTime.Add(c.window))
	if err != nil {
		c.log.Error("list expiring accounts", "error", err)
		return 0
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		refreshed int
	)

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		if acc.Platform != models.PlatformInstagram {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.ig.RefreshInstagramToken(ctx, acc.UserID, acc.RefreshToken); err != nil {
				c.log.Warn("unable to refresh instagram token", "user_id", acc.UserID, "account_id", acc.AccountID, "error", err)
				return
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
		}(acc)
	}
	wg.Wait()

	c.log.Info("token refresh finished", "expiring", len(accounts), "refreshed", refreshed)
	return refreshed
}
