package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// statusTTL bounds how long an abandoned run's status lingers.
const statusTTL = time.Hour

// StatusService is the live progress channel for generation runs, keyed by (user, poster).
type StatusService interface {
	Set(ctx context.Context, userID int64, update models.GenerationStatusUpdate) error
	Get(ctx context.Context, userID int64, posterID string) (*models.GenerationStatusUpdate, bool, error)
	// Clear lets the key expire after delay so clients still see the final state briefly.
	Clear(ctx context.Context, userID int64, posterID string, delay time.Duration) error
	Subscribe(ctx context.Context, userID int64, posterID string) (<-chan models.GenerationStatusUpdate, func(), error)
}

type statusService struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewStatusService(rdb *redis.Client, log *logger.Logger) StatusService {
	return &statusService{rdb: rdb, log: log.With("service", "StatusService")}
}

func statusKey(userID int64, posterID string) string {
	return fmt.Sprintf("generation:status:%d:%s", userID, posterID)
}

func (s *statusService) Set(ctx context.Context, userID int64, update models.GenerationStatusUpdate) error {
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(update)
	if err != nil {
		return err
	}
	key := statusKey(userID, update.PosterID)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, raw, statusTTL)
	pipe.Publish(ctx, key, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write generation status: %w", err)
	}
	return nil
}

func (s *statusService) Get(ctx context.Context, userID int64, posterID string) (*models.GenerationStatusUpdate, bool, error) {
	raw, err := s.rdb.Get(ctx, statusKey(userID, posterID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read generation status: %w", err)
	}
	var update models.GenerationStatusUpdate
	if err := json.Unmarshal(raw, &update); err != nil {
		return nil, false, fmt.Errorf("decode generation status: %w", err)
	}
	return &update, true, nil
}

func (s *statusService) Clear(ctx context.Context, userID int64, posterID string, delay time.Duration) error {
	key := statusKey(userID, posterID)
	if delay <= 0 {
		return s.rdb.Del(ctx, key).Err()
	}
	return s.rdb.Expire(ctx, key, delay).Err()
}

func (s *statusService) Subscribe(ctx context.Context, userID int64, posterID string) (<-chan models.GenerationStatusUpdate, func(), error) {
	sub := s.rdb.Subscribe(ctx, statusKey(userID, posterID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan models.GenerationStatusUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var update models.GenerationStatusUpdate
				if err := json.Unmarshal([]byte(m.Payload), &update); err != nil {
					s.log.Warn("bad status payload", "error", err)
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}
