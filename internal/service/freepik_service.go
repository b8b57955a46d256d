package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/h2non/filetype"
	cfg "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/taskpoll"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

const (
	opImprovePrompt   = "improve_prompt"
	opImageGeneration = "image_generation"

	improvePromptPath = "/v1/ai/improve-prompt"
	mysticPath        = "/v1/ai/mystic"

	maxImageBytes = 25 << 20
)

// ImageResult is a generated background. HasText reports whether the provider
// already rendered copy into the image.
type ImageResult struct {
	Bytes   []byte
	HasText bool
}

type ImageGenerator interface {
	ImprovePrompt(ctx context.Context, prompt, kind, language string, attempts int) (string, error)
	GenerateImage(ctx context.Context, prompt string, format models.PosterFormat) (ImageResult, error)
}

type FreepikService struct {
	config     cfg.Freepik
	httpClient *http.Client
	log        *logger.Logger
}

func NewFreepikService(c cfg.Freepik, log *logger.Logger) *FreepikService {
	return &FreepikService{
		config:     c,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With("service", "FreepikService"),
	}
}

// WithHTTPClient swaps the transport. Used by tests.
func (s *FreepikService) WithHTTPClient(client *http.Client) *FreepikService {
	s.httpClient = client
	return s
}

type freepikTaskEnvelope struct {
	Data struct {
		TaskID    string          `json:"task_id"`
		Status    string          `json:"status"`
		Generated json.RawMessage `json:"generated"`
		Error     string          `json:"error"`
	} `json:"data"`
	Message string `json:"message"`
}

// generatedValues accepts either a string or an array of strings.
func (e *freepikTaskEnvelope) generatedValues() []string {
	raw := e.Data.Generated
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// ImprovePrompt enhances prompt through the asynchronous improve-prompt task.
// kind is "image" or "video". attempts overrides the configured budget when > 0.
func (s *FreepikService) ImprovePrompt(ctx context.Context, prompt, kind, language string, attempts int) (string, error) {
	prompt = truncateRunes(strings.TrimSpace(prompt), s.config.PromptMaxLength)
	if prompt == "" {
		return "", apperr.Validation("prompt is required")
	}
	if kind != "video" {
		kind = "image"
	}
	if attempts <= 0 {
		attempts = s.config.ImproveMaxAttempts
	}

	improved, err := taskpoll.Run(ctx, taskpoll.Config{MaxAttempts: attempts, Interval: s.config.PollInterval}, taskpoll.Task[string]{
		Submit: func(ctx context.Context) (string, error) {
			body := map[string]string{"prompt": prompt, "type": kind}
			if language != "" {
				body["language"] = language
			}
			env, err := s.do(ctx, http.MethodPost, improvePromptPath, body)
			if err != nil {
				return "", err
			}
			return env.Data.TaskID, nil
		},
		Poll: func(ctx context.Context, taskID string) (taskpoll.State[string], error) {
			env, err := s.do(ctx, http.MethodGet, improvePromptPath+"/"+taskID, nil)
			if err != nil {
				return taskpoll.State[string]{}, err
			}
			state := taskpoll.State[string]{Status: env.Data.Status, Error: env.Data.Error}
			if values := env.generatedValues(); len(values) > 0 {
				state.Result = strings.TrimSpace(values[0])
			}
			return state, nil
		},
		Accept: func(result string) error {
			if result == "" {
				return errors.New("completed without generated text")
			}
			return nil
		},
	})
	if err != nil {
		return "", classifyTaskError(opImprovePrompt, err)
	}
	return improved, nil
}

// GenerateImage renders a background for format and downloads the result.
func (s *FreepikService) GenerateImage(ctx context.Context, prompt string, format models.PosterFormat) (ImageResult, error) {
	imageURL, err := taskpoll.Run(ctx, taskpoll.Config{MaxAttempts: s.config.MaxAttempts, Interval: s.config.PollInterval}, taskpoll.Task[string]{
		Submit: func(ctx context.Context) (string, error) {
			body := map[string]any{
				"prompt":       prompt,
				"aspect_ratio": format.AspectRatio,
				"resolution":   "2k",
			}
			env, err := s.do(ctx, http.MethodPost, mysticPath, body)
			if err != nil {
				return "", err
			}
			return env.Data.TaskID, nil
		},
		Poll: func(ctx context.Context, taskID string) (taskpoll.State[string], error) {
			env, err := s.do(ctx, http.MethodGet, mysticPath+"/"+taskID, nil)
			if err != nil {
				return taskpoll.State[string]{}, err
			}
			state := taskpoll.State[string]{Status: env.Data.Status, Error: env.Data.Error}
			if values := env.generatedValues(); len(values) > 0 {
				state.Result = values[0]
			}
			return state, nil
		},
		Accept: func(result string) error {
			if result == "" {
				return errors.New("completed without an image")
			}
			return nil
		},
	})
	if err != nil {
		return ImageResult{}, classifyTaskError(opImageGeneration, err)
	}

	data, err := s.download(ctx, imageURL)
	if err != nil {
		return ImageResult{}, apperr.Upstream(opImageGeneration, "download generated image", err)
	}
	return ImageResult{Bytes: data, HasText: s.config.RenderText}, nil
}

func classifyTaskError(op string, err error) error {
	var failed *taskpoll.FailedError
	var timeout *taskpoll.TimeoutError
	switch {
	case errors.As(err, &failed):
		return apperr.TaskFailed(op, failed.Error(), err)
	case errors.As(err, &timeout):
		return apperr.TaskTimeout(op, timeout.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperr.Upstream(op, "task request failed", err)
	}
}

func (s *FreepikService) do(ctx context.Context, method, path string, body any) (*freepikTaskEnvelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-freepik-api-key", s.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Warn("freepik error response", "path", path, "status", resp.StatusCode, "body", logger.Truncate(string(raw), 300))
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	var env freepikTaskEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("unparseable freepik response", "path", path, "body", logger.Truncate(string(raw), 300))
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return &env, nil
}

func (s *FreepikService) download(ctx context.Context, url string) ([]byte, error) {
	timeout := s.config.DownloadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fetchImage(ctx, s.httpClient, url)
}

// fetchImage downloads url and checks that the payload is an image.
func fetchImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("GET %s: payload is not an image", url)
	}
	return data, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
