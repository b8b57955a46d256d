package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/poster-api/configs"
	"github.com/maheshrc27/poster-api/internal/api/handlers"
	"github.com/maheshrc27/poster-api/internal/api/middleware"
	job "github.com/maheshrc27/poster-api/internal/jobs"
	"github.com/maheshrc27/poster-api/internal/models"
	"github.com/maheshrc27/poster-api/internal/queue"
	"github.com/maheshrc27/poster-api/internal/repository"
	"github.com/maheshrc27/poster-api/internal/service"
	"github.com/maheshrc27/poster-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

const (
	cronSecretHeader  = "X-Cron-Secret"
	adminSecretHeader = "X-Admin-Secret"
	generationTimeout = 10 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		lg.Fatal("failed to connect to database", "error", err)
	}
	if err := db.Ping(); err != nil {
		lg.Fatal("database is unreachable", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	ctx := context.Background()
	publisher, err := newAssetPublisher(ctx, cfg)
	if err != nil {
		lg.Fatal("failed to configure object storage", "driver", cfg.StorageDriver, "error", err)
	}

	// repositories
	userRepo := repository.NewUserRepository(db)
	brandKitRepo := repository.NewBrandKitRepository(db)
	posterRepo := repository.NewPosterRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	adminConfigRepo := repository.NewAdminConfigRepository(db)

	// generation pipeline
	openAI := service.NewOpenAIService(cfg.OpenAI)
	freepik := service.NewFreepikService(cfg.Freepik, lg)
	compositor, err := service.NewCompositorService(lg)
	if err != nil {
		lg.Fatal("failed to load compositor fonts", "error", err)
	}
	statusService := service.NewStatusService(rdb, lg)
	activityService := service.NewActivityService(activityRepo, lg)
	generationService := service.NewGenerationService(
		brandKitRepo,
		posterRepo,
		service.NewCopyService(openAI, lg),
		service.NewPromptService(openAI, lg),
		freepik,
		compositor,
		publisher,
		statusService,
		service.NewOccasionService(),
		activityService,
		service.GenerationOptions{
			StatusClearDelay:       cfg.Generation.StatusClearDelay,
			ImproveBestEffortTries: cfg.Freepik.ImproveBestEffortTries,
			DefaultFormat:          cfg.Generation.DefaultFormat,
		},
		lg,
	)

	authService := service.NewAuthService(cfg, userRepo, service.NewGoogleProfileFetcher(cfg), lg)
	userService := service.NewUserService(userRepo, lg)
	brandKitService := service.NewBrandKitService(brandKitRepo, lg)
	instagramService := service.NewInstagramService(cfg, socialAccountRepo, lg)
	posterService := service.NewPosterService(posterRepo, brandKitRepo, instagramService, activityService, lg)
	scheduleService := service.NewScheduleService(scheduleRepo, brandKitRepo, lg)
	onboardingService := service.NewOnboardingService(db, userRepo, brandKitRepo, scheduleRepo, lg)
	paymentService := service.NewPaymentService(userRepo, activityService, lg)
	platformService := service.NewPlatformService(cfg, socialAccountRepo, lg)
	adminService := service.NewAdminService(cfg, adminConfigRepo, generationService, lg)

	sweepJob := job.NewScheduleSweepJob(
		scheduleRepo,
		brandKitRepo,
		generationService,
		models.ParseImprovePolicy(cfg.Generation.ScheduledPolicy),
		cfg.Sweep.MaxDuration,
		lg,
	)
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, instagramService, job.DefaultRefreshWindow, lg)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    10 * 1024 * 1024, // 10 MB
		ErrorHandler: handlers.ErrorHandler(lg),
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	validate := validator.New()
	authMiddleware := middleware.NewAuthMiddleware(cfg, lg)

	auth := handlers.NewAuthHandler(cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Post("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(platformService, instagramService, cfg)
	app.Get("/auth/:platform", authMiddleware.AuthMiddleware(), platform.AddSocialAccount)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)

	payment := handlers.NewPaymentHandler(paymentService, cfg.WebhookSecret, lg)
	app.Post("/webhooks/payments", payment.PaymentWebhook)

	cronHandler := handlers.NewCronHandler(sweepJob)
	app.Get("/cron/sweep", middleware.RequireSecret(cronSecretHeader, cfg.Sweep.CronSecret), cronHandler.Sweep)

	admin := app.Group("/admin", middleware.RequireSecret(adminSecretHeader, cfg.AdminSecret))
	adminHandler := handlers.NewAdminHandler(adminService, validate)
	admin.Get("/brand-kit", adminHandler.GetBrandKit)
	admin.Patch("/brand-kit", adminHandler.UpdateBrandKit)
	admin.Post("/generate", adminHandler.Generate)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Delete("/user", user.DeleteAccount)

	onboarding := handlers.NewOnboardingHandler(onboardingService, validate)
	api.Post("/onboarding", onboarding.Complete)

	brandKits := handlers.NewBrandKitHandler(brandKitService, validate)
	api.Get("/brand-kits", brandKits.List)
	api.Post("/brand-kits", brandKits.Create)
	api.Get("/brand-kits/:id", brandKits.Get)
	api.Patch("/brand-kits/:id", brandKits.Update)
	api.Delete("/brand-kits/:id", brandKits.Delete)

	posters := handlers.NewPosterHandler(
		posterService,
		generationService,
		statusService,
		queue.NewEnqueuer(client, generationTimeout),
		models.ParseImprovePolicy(cfg.Generation.InteractivePolicy),
		validate,
		lg,
	)
	api.Get("/posters", posters.List)
	api.Get("/posters/today", posters.Today)
	api.Post("/posters/generate", posters.Generate)
	api.Get("/posters/:id", posters.Get)
	api.Get("/posters/:id/status", posters.Status)
	api.Get("/posters/:id/events", posters.Events)
	api.Post("/posters/:id/approve", posters.Approve)
	api.Post("/posters/:id/duplicate", posters.Duplicate)
	api.Patch("/posters/:id/copy", posters.EditCopy)
	api.Post("/posters/:id/publish", posters.Publish)

	schedule := handlers.NewScheduleHandler(scheduleService, validate)
	api.Get("/schedule", schedule.Get)
	api.Patch("/schedule", schedule.Patch)

	activity := handlers.NewActivityHandler(activityService)
	api.Get("/activity", activity.List)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	// cron jobs
	c := cron.New()
	if err := c.AddFunc("@every 1h", func() { refreshTokenJob.RefreshTokens(context.Background()) }); err != nil {
		lg.Fatal("invalid token refresh schedule", "error", err)
	}
	if cfg.Sweep.CronSpec != "" {
		err := c.AddFunc(cfg.Sweep.CronSpec, func() {
			if _, err := sweepJob.Run(context.Background(), time.Now()); err != nil {
				lg.Error("scheduled sweep failed", "error", err)
			}
		})
		if err != nil {
			lg.Fatal("invalid sweep cron spec", "spec", cfg.Sweep.CronSpec, "error", err)
		}
	}
	c.Start()

	// queue
	queueW := queue.NewQueue(generationService, lg)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 4,
	})
	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeGeneratePoster, queueW.HandleGeneratePosterTask)

		lg.Info("starting the asynq server")
		if err := server.Run(mux); err != nil {
			lg.Fatal("could not start asynq server", "error", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Fatal("failed to start server", "error", err)
		}
	}()
	lg.Info("server is running", "port", cfg.Port)

	gracefulShutdown(lg, app, server, c, db)
}

func newAssetPublisher(ctx context.Context, cfg *config.Config) (service.AssetPublisher, error) {
	switch cfg.StorageDriver {
	case "minio":
		return service.NewMinioService(ctx, cfg.MinIO)
	case "r2":
		return service.NewR2Service(ctx, cfg.R2)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(lg *logger.Logger, app *fiber.App, server *asynq.Server, c *cron.Cron, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	lg.Info("shutting down server")

	c.Stop()
	server.Shutdown()
	if err := app.Shutdown(); err != nil {
		lg.Error("failed to shut down server", "error", err)
	}

	closeDB(db)
	lg.Info("server shutdown complete")
}
