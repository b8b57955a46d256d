package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockBrandKitRepository struct {
	mock.Mock
}

func (m *MockBrandKitRepository) Create(ctx context.Context, tx *sql.Tx, kit *models.BrandKit) error {
	return m.Called(ctx, tx, kit).Error(0)
}

func (m *MockBrandKitRepository) GetByID(ctx context.Context, userID int64, id string) (*models.BrandKit, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BrandKit), args.Error(1)
}

func (m *MockBrandKitRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.BrandKit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BrandKit), args.Error(1)
}

func (m *MockBrandKitRepository) Update(ctx context.Context, kit *models.BrandKit) error {
	return m.Called(ctx, kit).Error(0)
}

func (m *MockBrandKitRepository) Remove(ctx context.Context, userID int64, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockPosterRepository struct {
	mock.Mock
}

func (m *MockPosterRepository) Create(ctx context.Context, poster *models.Poster) error {
	return m.Called(ctx, poster).Error(0)
}

func (m *MockPosterRepository) GetByID(ctx context.Context, userID int64, id string) (*models.Poster, error) {
	args := m.Called(ctx, userID, id)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func() *models.Poster:
		return v(), args.Error(1)
	default:
		return v.(*models.Poster), args.Error(1)
	}
}

func (m *MockPosterRepository) GetByDate(ctx context.Context, userID int64, brandKitID, date string) (*models.Poster, bool, error) {
	args := m.Called(ctx, userID, brandKitID, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Poster), args.Bool(1), args.Error(2)
}

func (m *MockPosterRepository) ListByUserID(ctx context.Context, userID int64, brandKitID string, limit int) ([]*models.Poster, error) {
	args := m.Called(ctx, userID, brandKitID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Poster), args.Error(1)
}

func (m *MockPosterRepository) Update(ctx context.Context, poster *models.Poster) error {
	return m.Called(ctx, poster).Error(0)
}

func (m *MockPosterRepository) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	return m.Called(ctx, id, status, errMsg).Error(0)
}

type MockCopyService struct {
	mock.Mock
}

func (m *MockCopyService) Generate(ctx context.Context, kit *models.BrandKit, occasion *models.OccasionContext, rec *models.Recommendation) (models.CopyData, error) {
	args := m.Called(ctx, kit, occasion, rec)
	return args.Get(0).(models.CopyData), args.Error(1)
}

type MockPromptService struct {
	mock.Mock
}

func (m *MockPromptService) Build(ctx context.Context, kit *models.BrandKit, copyData models.CopyData, occasion *models.OccasionContext) (string, error) {
	args := m.Called(ctx, kit, copyData, occasion)
	return args.String(0), args.Error(1)
}

type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) ImprovePrompt(ctx context.Context, prompt, kind, language string, attempts int) (string, error) {
	args := m.Called(ctx, prompt, kind, language, attempts)
	return args.String(0), args.Error(1)
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string, format models.PosterFormat) (ImageResult, error) {
	args := m.Called(ctx, prompt, format)
	return args.Get(0).(ImageResult), args.Error(1)
}

type MockCompositor struct {
	mock.Mock
}

func (m *MockCompositor) Compose(ctx context.Context, in ComposeInput) ([]byte, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Upload(ctx context.Context, data []byte, folder, id string) (string, error) {
	args := m.Called(ctx, data, folder, id)
	return args.String(0), args.Error(1)
}

// fakeStatus records every update in order.
type fakeStatus struct {
	mu      sync.Mutex
	updates []models.GenerationStatusUpdate
	cleared map[string]time.Duration
}

func newFakeStatus() *fakeStatus {
	return &fakeStatus{cleared: map[string]time.Duration{}}
}

func (f *fakeStatus) Set(_ context.Context, _ int64, u models.GenerationStatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeStatus) Get(_ context.Context, _ int64, posterID string) (*models.GenerationStatusUpdate, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.updates) - 1; i >= 0; i-- {
		if f.updates[i].PosterID == posterID {
			u := f.updates[i]
			return &u, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeStatus) Clear(_ context.Context, _ int64, posterID string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared[posterID] = delay
	return nil
}

func (f *fakeStatus) Subscribe(context.Context, int64, string) (<-chan models.GenerationStatusUpdate, func(), error) {
	ch := make(chan models.GenerationStatusUpdate)
	close(ch)
	return ch, func() {}, nil
}

func (f *fakeStatus) statuses() []models.GenerationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.GenerationStatus, 0, len(f.updates))
	for _, u := range f.updates {
		out = append(out, u.Status)
	}
	return out
}

func (f *fakeStatus) progress() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, 0, len(f.updates))
	for _, u := range f.updates {
		out = append(out, u.Progress)
	}
	return out
}

type fakeActivity struct {
	mu      sync.Mutex
	records []models.Activity
}

func (f *fakeActivity) Record(_ context.Context, userID int64, kind, posterID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, models.Activity{UserID: userID, Type: kind, PosterID: posterID, Message: message})
}

func (f *fakeActivity) List(context.Context, int64, int) ([]*models.Activity, error) {
	return nil, nil
}

func (f *fakeActivity) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.Type)
	}
	return out
}

type stubOccasions struct {
	ctx *models.OccasionContext
}

func (s stubOccasions) Detect(time.Time, *models.Location) *models.OccasionContext {
	return s.ctx
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	args := m.Called(ctx, tx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePlan(ctx context.Context, id int64, plan string) error {
	return m.Called(ctx, id, plan).Error(0)
}

func (m *MockUserRepository) SetOnboarded(ctx context.Context, tx *sql.Tx, id int64) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *MockUserRepository) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetByUserID(ctx context.Context, userID int64) (*models.Schedule, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Schedule), args.Bool(1), args.Error(2)
}

func (m *MockScheduleRepository) Upsert(ctx context.Context, tx *sql.Tx, s *models.Schedule) error {
	return m.Called(ctx, tx, s).Error(0)
}

func (m *MockScheduleRepository) ListEnabled(ctx context.Context) ([]*models.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) UpdateRun(ctx context.Context, id string, nextRunAt, lastRunAt time.Time) error {
	return m.Called(ctx, id, nextRunAt, lastRunAt).Error(0)
}

type MockSocialAccountRepository struct {
	mock.Mock
}

func (m *MockSocialAccountRepository) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	args := m.Called(ctx, tx, sa)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSocialAccountRepository) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.SocialAccount, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) ListByTimeInterval(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, initialTime, finalTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepository) SetToken(ctx context.Context, userID int64, oldAccessToken string, sa *models.SocialAccount) error {
	return m.Called(ctx, userID, oldAccessToken, sa).Error(0)
}

func (m *MockSocialAccountRepository) Remove(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

// memAdminConfig merges top-level JSON keys the way the JSONB || operator does.
type memAdminConfig struct {
	docs map[string]map[string]json.RawMessage
}

func newMemAdminConfig() *memAdminConfig {
	return &memAdminConfig{docs: map[string]map[string]json.RawMessage{}}
}

func (m *memAdminConfig) Get(_ context.Context, key string, dest any) (bool, error) {
	doc, ok := m.docs[key]
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memAdminConfig) Merge(_ context.Context, key string, patch any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	doc, ok := m.docs[key]
	if !ok {
		doc = map[string]json.RawMessage{}
		m.docs[key] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Start(ctx context.Context, req GenerateRequest) (*models.Poster, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Poster), args.Bool(1), args.Error(2)
}

func (m *MockGenerationService) Run(ctx context.Context, posterID string, req GenerateRequest) (*models.Poster, error) {
	args := m.Called(ctx, posterID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poster), args.Error(1)
}

func (m *MockGenerationService) Generate(ctx context.Context, req GenerateRequest) (*models.Poster, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Poster), args.Error(1)
}

type MockInstagramService struct {
	mock.Mock
}

func (m *MockInstagramService) InstagramCallback(ctx context.Context, code string, userID int64) error {
	return m.Called(ctx, code, userID).Error(0)
}

func (m *MockInstagramService) RefreshInstagramToken(ctx context.Context, userID int64, refreshToken string) error {
	return m.Called(ctx, userID, refreshToken).Error(0)
}

func (m *MockInstagramService) Publish(ctx context.Context, userID int64, imageURL, caption string) (string, error) {
	args := m.Called(ctx, userID, imageURL, caption)
	return args.String(0), args.Error(1)
}
