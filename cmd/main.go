package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/league-system/config"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/repositories"
	api "github.com/Dosada05/league-system/routes"
	"github.com/Dosada05/league-system/services"
	"github.com/Dosada05/league-system/storage"
	"github.com/go-chi/chi/v5"
	"github.com/itbasis/go-clock"
)

// @title League System API
// @version 1.0
// @description Competition formats, standings tables and discipline rules for football leagues.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.DBApplySchema {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.ApplySchema(ctx, dbConn)
		cancel()
		if err != nil {
			logger.Error("failed to apply database schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema applied")
	}

	// Export stays disabled (nil uploader) without R2 settings.
	var uploader storage.Uploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewR2Uploader(context.Background(), storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 is not configured, standings export is disabled")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	liveHub := live.NewHub(logger)
	go liveHub.Run(hubCtx)
	logger.Info("live hub started")

	formatRepo := repositories.NewPostgresFormatRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	phaseRepo := repositories.NewPostgresPhaseRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	standingRepo := repositories.NewPostgresLeagueStandingRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	ruleRepo := repositories.NewPostgresDisciplineRuleRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	transactor := repositories.NewTransactor(dbConn)
	logger.Info("repositories initialized")

	systemClock := clock.New()

	formatService := services.NewFormatService(formatRepo, leagueRepo, phaseRepo, transactor)
	leagueService := services.NewLeagueService(leagueRepo, formatRepo, teamRepo, playerRepo, phaseRepo, groupRepo, matchRepo)
	standingService := services.NewStandingService(
		standingRepo,
		phaseRepo,
		leagueRepo,
		groupRepo,
		matchRepo,
		formatRepo,
		transactor,
		liveHub,
		logger,
	)
	disciplineService := services.NewDisciplineService(ruleRepo, leagueRepo, phaseRepo, playerRepo, standingRepo)
	configurationService := services.NewConfigurationService(leagueRepo, formatRepo, phaseRepo, matchRepo, inviteRepo, systemClock)
	inviteService := services.NewInviteService(inviteRepo, leagueRepo, systemClock, logger)
	exportService := services.NewExportService(standingService, phaseRepo, uploader, systemClock, logger)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Format:        handlers.NewFormatHandler(formatService, liveHub),
		League:        handlers.NewLeagueHandler(leagueService),
		Standing:      handlers.NewStandingHandler(standingService, exportService),
		Discipline:    handlers.NewDisciplineHandler(disciplineService),
		Configuration: handlers.NewConfigurationHandler(configurationService),
		Invite:        handlers.NewInviteHandler(inviteService),
		WebSocket:     handlers.NewWebSocketHandler(liveHub, leagueService, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stopHub()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		stopHub()
		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
