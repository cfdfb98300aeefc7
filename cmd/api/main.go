package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/harentsoaR/academic-scheduler/internal/config"
	"github.com/harentsoaR/academic-scheduler/internal/handlers"
	"github.com/harentsoaR/academic-scheduler/internal/logger"
	"github.com/harentsoaR/academic-scheduler/internal/middleware"
	"github.com/harentsoaR/academic-scheduler/internal/repository"
	"github.com/harentsoaR/academic-scheduler/internal/repository/memstore"
	"github.com/harentsoaR/academic-scheduler/internal/server"
	"github.com/harentsoaR/academic-scheduler/internal/services"
	"github.com/harentsoaR/academic-scheduler/internal/tokenstore"
	"github.com/harentsoaR/academic-scheduler/internal/upload"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

type revocationStore interface {
	handlers.TokenRevoker
	middleware.RevocationChecker
	handlers.Pinger
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found, relying on environment variables.")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Configure(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Storage ---
	ctx := context.Background()
	var (
		stores  handlers.Stores
		storage handlers.Pinger
	)
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		mem := memstore.New()
		stores = handlers.Stores{Users: mem.Users, Venues: mem.Venues, Groups: mem.Groups, Subjects: mem.Subjects, Timetables: mem.Timetables}
		storage = mem
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
	default:
		db, err := repository.Open(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer func() {
			if err := db.Close(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("MongoDB disconnect failed")
			}
		}()
		stores = handlers.Stores{Users: db.Users, Venues: db.Venues, Groups: db.Groups, Subjects: db.Subjects, Timetables: db.Timetables}
		storage = db
	}

	// --- Token revocation ---
	var revocations revocationStore
	if cfg.Redis.Addr != "" {
		rdb := tokenstore.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		revocations = rdb
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Revoked tokens are stored in Redis")
	} else {
		revocations = tokenstore.NewMemory()
	}

	// --- Services ---
	uploads, err := upload.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare upload directory")
	}
	notificationSvc := services.NewNotificationService(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	h := handlers.NewHandler(stores, tokens, revocations, uploads, notificationSvc)
	h.AddHealthCheck("storage", storage)
	h.AddHealthCheck("tokens", revocations)

	if created, err := handlers.EnsureAdmin(ctx, stores.Users, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	} else if !created && cfg.Admin.Email != "" {
		logger.Debug().Msg("Admin account already present, bootstrap skipped")
	}

	// --- Router ---
	r := server.NewRouter(h, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      uploads.Root(),
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
		Tokens:         tokens,
		Revoked:        revocations,
		Metrics:        middleware.NewMetrics(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Str("env", cfg.Server.Env).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}
}
