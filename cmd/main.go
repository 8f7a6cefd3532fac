package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/config"
	"stemgharbiya/siteapi/internal/handler"
	"stemgharbiya/siteapi/internal/logger"
	"stemgharbiya/siteapi/internal/mailer"
	"stemgharbiya/siteapi/internal/model"
	"stemgharbiya/siteapi/internal/monitoring"
	"stemgharbiya/siteapi/internal/ratelimit"
	"stemgharbiya/siteapi/internal/repository"
	"stemgharbiya/siteapi/internal/service"
	"stemgharbiya/siteapi/internal/turnstile"
)

func main() {
	// 1. Load and validate configuration; a missing required key fails the
	// process here, before any listener starts.
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		zlog.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Run idempotent migration before accepting traffic, if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			zlog.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zlog.Info("database migration completed")
	}

	// 5. Initialize state store for rate-limit counters (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		zlog.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		zlog.Info("using in-memory state store")
	default:
		zlog.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	appRepo := repository.NewPGApplicationRepository(db)
	contactRepo := repository.NewPGContactRepository(db)

	// 7. Initialize adapters: CAPTCHA verifier, rate limiter, mail sender
	verifier := turnstile.NewVerifier(cfg.Turnstile, zlog)
	limiter := ratelimit.New(stateStore, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	sender, err := mailer.NewSender(cfg.Mail, zlog)
	if err != nil {
		zlog.Fatal("failed to init mail sender", zap.Error(err))
	}
	if cfg.Mail.Provider == "disabled" {
		zlog.Warn("mail sending is disabled; payloads will be logged only")
	}

	// 8. Initialize services
	joinService := service.NewJoinService(appRepo, verifier, limiter, sender, cfg.Mail.TeamEmail, zlog)
	contactService := service.NewContactService(contactRepo, verifier, limiter, sender, cfg.Mail.TeamEmail, zlog)

	// 9. Initialize handlers and metrics
	joinHandler := handler.NewJoinHandler(joinService)
	contactHandler := handler.NewContactHandler(contactService)
	metrics := monitoring.NewMetrics()

	// 10. Setup router
	router := handler.SetupRouter(cfg, zlog, metrics, joinHandler, contactHandler)

	// 11. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 12. Start server with graceful shutdown
	go func() {
		zlog.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exited gracefully")
}
