// Package taskpoll runs the submit-then-poll loop shared by the asynchronous
// prompt-improvement and image-generation tasks.
package taskpoll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
)

// State is one poll observation. Result is only meaningful when the task succeeded.
type State[T any] struct {
	Status string
	Result T
	Error  string
}

type Config struct {
	MaxAttempts int
	Interval    time.Duration
}

var (
	ErrTimeout = errors.New("task did not finish within the attempt budget")
	ErrFailed  = errors.New("task reported failure")
)

// FailedError is returned when the provider reports a terminal failure status.
type FailedError struct {
	TaskID string
	Status string
	Reason string
}

func (e *FailedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("task %s %s: %s", e.TaskID, e.Status, e.Reason)
	}
	return fmt.Sprintf("task %s %s", e.TaskID, e.Status)
}

func (e *FailedError) Unwrap() error { return ErrFailed }

// TimeoutError is returned when the attempt budget is exhausted.
type TimeoutError struct {
	TaskID   string
	Attempts int
	Status   string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s still %s after %d attempts", e.TaskID, e.Status, e.Attempts)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// Classify maps the provider status vocabulary (case-insensitive) onto an outcome.
func Classify(status string) Outcome {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "COMPLETED", "SUCCESS", "DONE":
		return Succeeded
	case "FAILED", "ERROR", "CANCELLED":
		return Failed
	default:
		return Pending
	}
}

type Task[T any] struct {
	Submit func(ctx context.Context) (string, error)
	Poll   func(ctx context.Context, taskID string) (State[T], error)
	// Classify defaults to the package Classify.
	Classify func(status string) Outcome
	// Accept may reject a successful result (e.g. empty output), turning it into a failure.
	Accept func(result T) error
}

// Run submits the task and polls it every cfg.Interval until it reaches a
// terminal status or cfg.MaxAttempts polls have been made. A failure status
// stops polling immediately.
func Run[T any](ctx context.Context, cfg Config, task Task[T]) (T, error) {
	var zero T

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	classify := task.Classify
	if classify == nil {
		classify = Classify
	}

	taskID, err := task.Submit(ctx)
	if err != nil {
		return zero, fmt.Errorf("submit task: %w", err)
	}
	if taskID == "" {
		return zero, errors.New("submit task: provider returned no task id")
	}

	lastStatus := "PENDING"
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 || cfg.Interval > 0 {
			if err := sleep(ctx, cfg.Interval); err != nil {
				return zero, err
			}
		}

		state, err := task.Poll(ctx, taskID)
		if err != nil {
			return zero, fmt.Errorf("poll task %s: %w", taskID, err)
		}
		lastStatus = strings.ToUpper(strings.TrimSpace(state.Status))

		switch classify(state.Status) {
		case Succeeded:
			if task.Accept != nil {
				if err := task.Accept(state.Result); err != nil {
					return zero, &FailedError{TaskID: taskID, Status: lastStatus, Reason: err.Error()}
				}
			}
			return state.Result, nil
		case Failed:
			return zero, &FailedError{TaskID: taskID, Status: lastStatus, Reason: state.Error}
		}
	}

	return zero, &TimeoutError{TaskID: taskID, Attempts: cfg.MaxAttempts, Status: lastStatus}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
