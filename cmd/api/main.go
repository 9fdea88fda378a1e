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

	"github.com/internlog/internlog-api/internal/config"
	"github.com/internlog/internlog-api/internal/database"
	"github.com/internlog/internlog-api/internal/handler"
	"github.com/internlog/internlog-api/internal/middleware"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
	"github.com/internlog/internlog-api/internal/router"
	"github.com/internlog/internlog-api/internal/service"
	"github.com/internlog/internlog-api/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.LogEntry{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewLogRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	dashboardService := service.NewDashboardService(userRepo, logRepo, redisClient, cfg.DashboardCacheTTL, cfg.RecentFeedSize, logger)
	authService := service.NewAuthService(userRepo, sessions, validate, logger)
	logService := service.NewLogService(logRepo, validate, dashboardService, logger)
	reviewService := service.NewReviewService(logRepo, userRepo, validate, activityService, dashboardService, logger)
	assignmentService := service.NewAssignmentService(userRepo, activityService, logger)
	adminService := service.NewAdminService(userRepo, logRepo, validate, activityService, dashboardService, logger)
	backupService := service.NewBackupService(cfg.DatabaseURL, cfg.BackupDir, activityService, logger)

	if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:             handler.NewAuthHandler(authService, logger),
		LogHandler:              handler.NewLogHandler(logService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		SupervisorHandler:       handler.NewSupervisorHandler(reviewService, logger),
		AdminDashboardHandler:   handler.NewAdminDashboardHandler(dashboardService, activityService, logger),
		AdminStudentHandler:     handler.NewAdminStudentHandler(adminService, assignmentService, logger),
		AdminSupervisorHandler:  handler.NewAdminSupervisorHandler(adminService, logger),
		AdminLogHandler:         handler.NewAdminLogHandler(adminService, logger),
		AdminSettingsHandler:    handler.NewAdminSettingsHandler(backupService, logger),
		SessionMiddleware:       middleware.SessionProtected(sessions, logger),
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
