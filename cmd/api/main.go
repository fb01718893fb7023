package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushub/integrity-api/internal/config"
	"github.com/campushub/integrity-api/internal/database"
	"github.com/campushub/integrity-api/internal/handler"
	"github.com/campushub/integrity-api/internal/middleware"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/repository"
	"github.com/campushub/integrity-api/internal/router"
	"github.com/campushub/integrity-api/internal/service"
	"github.com/campushub/integrity-api/internal/similarity"
	"github.com/campushub/integrity-api/pkg/embedding"
	"github.com/campushub/integrity-api/pkg/extractor"
	"github.com/campushub/integrity-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Course{}, &models.Assignment{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	store, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create artifact store: %v", err)
	}

	generator, err := embedding.NewService(embedding.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.EmbeddingModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create embedding generator: %v", err)
	}

	engine := similarity.NewEngine(generator, logger)
	extract := extractor.New(logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	submissionService := service.NewSubmissionService(
		submissionRepo,
		assignmentRepo,
		engine,
		generator,
		extract,
		store,
		validate,
		service.SubmissionConfig{
			FlagThreshold:  cfg.SimilarityThreshold,
			RejectPastDue:  cfg.RejectLateUploads,
			MaxUploadBytes: cfg.MaxUploadBytes(),
		},
		logger,
	)
	comparisonService := service.NewComparisonService(
		submissionRepo,
		assignmentRepo,
		engine,
		generator,
		extract,
		store,
		validate,
		logger,
	)
	lifecycleService := service.NewLifecycleService(
		assignmentRepo,
		courseRepo,
		submissionRepo,
		redisClient,
		cfg.StatusCacheTTL,
		logger,
	)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger)
	rosterService := service.NewRosterService(courseRepo, userRepo, logger)

	lifecycleHandler := handler.NewLifecycleHandler(lifecycleService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadBytes()) + (1 << 20),
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, router.Dependencies{
		Config:      &cfg,
		Health:      handler.NewHealthHandler(db),
		Submissions: handler.NewSubmissionHandler(submissionService, validate, logger),
		Reports:     handler.NewReportHandler(comparisonService, validate, logger),
		Assignments: handler.NewAssignmentHandler(assignmentService, lifecycleHandler, validate, logger),
		Rosters:     handler.NewRosterHandler(rosterService, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
