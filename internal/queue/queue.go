package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer hands a started poster to the background worker.
type Enqueuer interface {
	EnqueueGeneration(payload GeneratePosterPayload) error
}

type asynqEnqueuer struct {
	client  *asynq.Client
	timeout time.Duration
}

func NewEnqueuer(client *asynq.Client, timeout time.Duration) Enqueuer {
	return &asynqEnqueuer{client: client, timeout: timeout}
}

func (e *asynqEnqueuer) EnqueueGeneration(payload GeneratePosterPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	opts := []asynq.Option{asynq.MaxRetry(0)}
	if e.timeout > 0 {
		opts = append(opts, asynq.Timeout(e.timeout))
	}
	task := asynq.NewTask(TaskTypeGeneratePoster, taskPayload, opts...)

	if _, err := e.client.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue poster %s: %w", payload.PosterID, err)
	}
	return nil
}
