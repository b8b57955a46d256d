package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleGeneratePosterTask(ctx context.Context, task *asynq.Task) error {
	var payload GeneratePosterPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskTypeGeneratePoster, err, asynq.SkipRetry)
	}

	log := q.log.With("poster_id", payload.PosterID, "user_id", payload.Request.UserID)
	log.Info("generation task started")

	if _, err := q.gs.Run(ctx, payload.PosterID, payload.Request); err != nil {
		// Failures are recorded on the poster; runs are never retried.
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}
