package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/queue"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/internal/transfer"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/stretchr/testify/mock"
)

// newTestApp mounts routes behind a middleware that authenticates userID.
func newTestApp(userID string, register func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.Nop())})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	register(app)
	return app
}

type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Start(ctx context.Context, req service.GenerateRequest) (*models.Poster, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Poster), args.Bool(1), args.Error(2)
}

func (m *MockGenerationService) Run(ctx context.Context, posterID string, req service.GenerateRequest) (*models.Poster, error) {
	args := m.Called(ctx, posterID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poster), args.Error(1)
}

func (m *MockGenerationService) Generate(ctx context.Context, req service.GenerateRequest) (*models.Poster, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poster), args.Error(1)
}

type MockPosterService struct {
	mock.Mock
}

func (m *MockPosterService) posterResult(args mock.Arguments) (*models.Poster, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poster), args.Error(1)
}

func (m *MockPosterService) List(ctx context.Context, userID int64, brandKitID string, limit int) ([]*models.Poster, error) {
	args := m.Called(ctx, userID, brandKitID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Poster), args.Error(1)
}

func (m *MockPosterService) Get(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	return m.posterResult(m.Called(ctx, userID, id))
}

func (m *MockPosterService) Today(ctx context.Context, userID int64, brandKitID string) (*models.Poster, bool, error) {
	args := m.Called(ctx, userID, brandKitID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Poster), args.Bool(1), args.Error(2)
}

func (m *MockPosterService) Approve(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	return m.posterResult(m.Called(ctx, userID, id))
}

func (m *MockPosterService) Duplicate(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	return m.posterResult(m.Called(ctx, userID, id))
}

func (m *MockPosterService) EditCopy(ctx context.Context, userID int64, id string, req *transfer.CopyEditRequest) (*models.Poster, error) {
	return m.posterResult(m.Called(ctx, userID, id, req))
}

func (m *MockPosterService) Publish(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	return m.posterResult(m.Called(ctx, userID, id))
}

type fakeEnqueuer struct {
	payloads []queue.GeneratePosterPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueGeneration(payload queue.GeneratePosterPayload) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

// fakeStatus serves a fixed current status and replays updates to subscribers.
type fakeStatus struct {
	current *models.GenerationStatusUpdate
	updates []models.GenerationStatusUpdate
}

func (f *fakeStatus) Set(context.Context, int64, models.GenerationStatusUpdate) error { return nil }

func (f *fakeStatus) Get(context.Context, int64, string) (*models.GenerationStatusUpdate, bool, error) {
	if f.current == nil {
		return nil, false, nil
	}
	u := *f.current
	return &u, true, nil
}

func (f *fakeStatus) Clear(context.Context, int64, string, time.Duration) error { return nil }

func (f *fakeStatus) Subscribe(context.Context, int64, string) (<-chan models.GenerationStatusUpdate, func(), error) {
	ch := make(chan models.GenerationStatusUpdate, len(f.updates))
	for _, u := range f.updates {
		ch <- u
	}
	close(ch)
	return ch, func() {}, nil
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) HandleEvent(ctx context.Context, event *transfer.PaymentEvent) error {
	return m.Called(ctx, event).Error(0)
}
