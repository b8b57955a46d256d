package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/poster-api/internal/apperr"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/schedule"
	"github.com/maheshrc27/poster-api/pkg/logger"
)

// Progress checkpoints reported on the live status channel.
const (
	progressPending     = 0
	progressCopyStarted = 10
	progressCopyDone    = 25
	progressImage       = 35
	progressCompositing = 78
	progressUploading   = 90
	progressComplete    = 100
)

const posterFolderFormat = "posters/%d"

// GenerateRequest describes one run for a (user, brand kit) pair.
type GenerateRequest struct {
	UserID     int64  `json:"user_id"`
	BrandKitID string `json:"brand_kit_id"`
	// BrandKit bypasses the store lookup (admin pipeline).
	BrandKit       *models.BrandKit           `json:"brand_kit,omitempty"`
	FormatID       string                     `json:"format_id,omitempty"`
	Recommendation *models.Recommendation     `json:"recommendation,omitempty"`
	Occasion       *models.OccasionContext    `json:"occasion,omitempty"`
	Policy         models.ImprovePromptPolicy `json:"policy"`
	// DetectOccasion looks up a calendar occasion when none is supplied.
	DetectOccasion bool `json:"detect_occasion"`
	// Force skips the one-poster-per-day check.
	Force bool `json:"force"`
}

type GenerationOptions struct {
	StatusClearDelay       time.Duration
	ImproveBestEffortTries int
	DefaultFormat          string
}

type GenerationService interface {
	// Start creates the poster and writes the pending status. existing is true when
	// today's poster for the brand kit was returned instead of a new one.
	Start(ctx context.Context, req GenerateRequest) (poster *models.Poster, existing bool, err error)
	// Run executes the pipeline for a poster created by Start.
	Run(ctx context.Context, posterID string, req GenerateRequest) (*models.Poster, error)
	// Generate is Start followed by Run.
	Generate(ctx context.Context, req GenerateRequest) (*models.Poster, error)
}

type generationService struct {
	brandKits  repository.BrandKitRepository
	posters    repository.PosterRepository
	copy       CopyService
	prompts    PromptService
	images     ImageGenerator
	compositor CompositorService
	publisher  AssetPublisher
	status     StatusService
	occasions  OccasionService
	activity   ActivityService
	opts       GenerationOptions
	now        func() time.Time
	log        *logger.Logger
}

func NewGenerationService(
	brandKits repository.BrandKitRepository,
	posters repository.PosterRepository,
	copySvc CopyService,
	prompts PromptService,
	images ImageGenerator,
	compositor CompositorService,
	publisher AssetPublisher,
	status StatusService,
	occasions OccasionService,
	activity ActivityService,
	opts GenerationOptions,
	log *logger.Logger,
) GenerationService {
	return &generationService{
		brandKits:  brandKits,
		posters:    posters,
		copy:       copySvc,
		prompts:    prompts,
		images:     images,
		compositor: compositor,
		publisher:  publisher,
		status:     status,
		occasions:  occasions,
		activity:   activity,
		opts:       opts,
		now:        time.Now,
		log:        log.With("service", "GenerationService"),
	}
}

func (s *generationService) loadKit(ctx context.Context, req GenerateRequest) (*models.BrandKit, error) {
	if req.BrandKit != nil {
		return req.BrandKit.Normalize(), nil
	}
	if req.BrandKitID == "" {
		return nil, apperr.Validation("brand kit id is required")
	}
	return s.brandKits.GetByID(ctx, req.UserID, req.BrandKitID)
}

func (s *generationService) Start(ctx context.Context, req GenerateRequest) (*models.Poster, bool, error) {
	kit, err := s.loadKit(ctx, req)
	if err != nil {
		return nil, false, err
	}

	postDate := schedule.LocalDate(s.now(), kit.Timezone())
	if !req.Force {
		existing, found, err := s.posters.GetByDate(ctx, req.UserID, kit.ID, postDate)
		if err != nil {
			return nil, false, err
		}
		if found {
			s.log.Info("poster already exists for today", "user_id", req.UserID, "brand_kit_id", kit.ID, "poster_id", existing.ID)
			return existing, true, nil
		}
	}

	formatID := req.FormatID
	if _, ok := models.PosterFormats[formatID]; !ok {
		formatID = s.opts.DefaultFormat
	}

	poster := &models.Poster{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		BrandKitID: kit.ID,
		FormatID:   models.LookupFormat(formatID).ID,
		Status:     models.PosterStatusGenerated,
		Version:    1,
		PostDate:   postDate,
		Hashtags:   []string{},
		DailyGuard: !req.Force,
	}
	if rec := req.Recommendation; rec != nil {
		poster.Theme = rec.Theme
		poster.Topic = rec.Topic
	}
	if err := s.posters.Create(ctx, poster); err != nil {
		if !errors.Is(err, repository.ErrDailyPosterExists) {
			return nil, false, err
		}
		// A concurrent run won the insert.
		existing, found, gerr := s.posters.GetByDate(ctx, req.UserID, kit.ID, postDate)
		if gerr != nil {
			return nil, false, gerr
		}
		if !found {
			return nil, false, err
		}
		return existing, true, nil
	}

	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationPending, progressPending, "Queued")
	s.activity.Record(ctx, req.UserID, models.ActivityGenerationStarted, poster.ID, "Poster generation started for "+kit.BrandName)
	return poster, false, nil
}

func (s *generationService) Generate(ctx context.Context, req GenerateRequest) (*models.Poster, error) {
	poster, existing, err := s.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing {
		return poster, nil
	}
	return s.Run(ctx, poster.ID, req)
}

func (s *generationService) Run(ctx context.Context, posterID string, req GenerateRequest) (*models.Poster, error) {
	log := s.log.With("user_id", req.UserID, "poster_id", posterID)

	poster, err := s.posters.GetByID(ctx, req.UserID, posterID)
	if err != nil {
		// The record may still exist, so mark it failed by id.
		return nil, s.fail(ctx, log, &models.Poster{ID: posterID, UserID: req.UserID}, err)
	}
	kit, err := s.loadKit(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, log, poster, err)
	}

	log = log.With("brand_kit_id", kit.ID)
	started := s.now()

	if err := s.runPipeline(ctx, log, kit, poster, req); err != nil {
		return nil, s.fail(ctx, log, poster, err)
	}

	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationComplete, progressComplete, "Poster ready")
	if err := s.status.Clear(ctx, req.UserID, poster.ID, s.opts.StatusClearDelay); err != nil {
		log.Warn("clear generation status failed", "error", err)
	}
	s.activity.Record(ctx, req.UserID, models.ActivityGenerationCompleted, poster.ID, "Poster generated: "+poster.Headline)
	log.Info("poster generated", "duration", s.now().Sub(started).String(), "image_url", poster.ImageURL)
	return poster, nil
}

func (s *generationService) runPipeline(ctx context.Context, log *logger.Logger, kit *models.BrandKit, poster *models.Poster, req GenerateRequest) error {
	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationGeneratingCopy, progressCopyStarted, "Writing copy")

	occasion := req.Occasion
	if occasion == nil && req.Recommendation == nil && req.DetectOccasion {
		occasion = s.occasions.Detect(schedule.LocalTime(s.now(), kit.Timezone()), kit.Location)
	}

	copyData, err := s.copy.Generate(ctx, kit, occasion, req.Recommendation)
	if err != nil {
		return err
	}
	poster.SetCopy(copyData)
	if occasion != nil && poster.Theme == "" {
		poster.Theme = occasion.Name
	}
	if err := s.posters.Update(ctx, poster); err != nil {
		return err
	}
	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationGeneratingCopy, progressCopyDone, "Copy ready")

	prompt, err := s.prompts.Build(ctx, kit, copyData, occasion)
	if err != nil {
		return err
	}
	prompt = s.improvePrompt(ctx, log, prompt, kit.Language, req.Policy)

	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationGeneratingImage, progressImage, "Generating background")
	format := models.LookupFormat(poster.FormatID)
	img, err := s.images.GenerateImage(ctx, prompt, format)
	if err != nil {
		return err
	}

	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationCompositing, progressCompositing, "Composing poster")
	rendered, err := s.compositor.Compose(ctx, ComposeInput{
		Background: img.Bytes,
		Format:     format,
		Primary:    kit.PrimaryColor,
		Secondary:  kit.SecondaryColor,
		Accent:     kit.AccentColor,
		LogoURL:    kit.LogoURL,
		Copy:       copyData,
		HasText:    img.HasText,
	})
	if err != nil {
		return err
	}

	s.setStatus(ctx, req.UserID, poster.ID, models.GenerationUploading, progressUploading, "Uploading")
	url, err := s.publisher.Upload(ctx, rendered, fmt.Sprintf(posterFolderFormat, req.UserID), poster.ID)
	if err != nil {
		return err
	}
	if url == "" {
		return apperr.Upload(opUpload, "storage returned no URL", nil)
	}

	poster.ImageURL = url
	poster.Status = models.PosterStatusGenerated
	poster.Error = ""
	return s.posters.Update(ctx, poster)
}

// improvePrompt applies the policy; failures fall back to the original prompt.
func (s *generationService) improvePrompt(ctx context.Context, log *logger.Logger, prompt, language string, policy models.ImprovePromptPolicy) string {
	attempts := 0
	switch policy {
	case models.ImproveNever:
		return prompt
	case models.ImproveAlways:
	default:
		attempts = s.opts.ImproveBestEffortTries
	}

	improved, err := s.images.ImprovePrompt(ctx, prompt, "image", language, attempts)
	if err != nil {
		log.Warn("prompt improvement failed, using original prompt", "policy", string(policy), "error", err)
		return prompt
	}
	if improved == "" {
		return prompt
	}
	if !strings.HasSuffix(improved, NoTextSuffix) {
		improved += NoTextSuffix
	}
	return improved
}

// fail records the failure durably and returns err unchanged.
func (s *generationService) fail(ctx context.Context, log *logger.Logger, poster *models.Poster, err error) error {
	ctx = context.WithoutCancel(ctx)
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "generation timed out"
	}
	log.Error("poster generation failed", "error", err, "kind", apperr.KindOf(err).String())

	if uerr := s.posters.UpdateStatus(ctx, poster.ID, models.PosterStatusFailed, msg); uerr != nil {
		log.Error("mark poster failed", "error", uerr)
	}
	s.setStatus(ctx, poster.UserID, poster.ID, models.GenerationFailed, 0, msg)
	s.activity.Record(ctx, poster.UserID, models.ActivityGenerationFailed, poster.ID, msg)
	return err
}

func (s *generationService) setStatus(ctx context.Context, userID int64, posterID string, status models.GenerationStatus, progress int, message string) {
	err := s.status.Set(ctx, userID, models.GenerationStatusUpdate{
		PosterID:  posterID,
		Status:    status,
		Progress:  progress,
		Message:   message,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("write generation status failed", "poster_id", posterID, "status", string(status), "error", err)
	}
}
