package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-adp-console/api/swagger"
	"github.com/noah-isme/sma-adp-console/internal/handler"
	"github.com/noah-isme/sma-adp-console/internal/middleware"
	"github.com/noah-isme/sma-adp-console/internal/repository"
	"github.com/noah-isme/sma-adp-console/internal/service"
	"github.com/noah-isme/sma-adp-console/internal/session"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	"github.com/noah-isme/sma-adp-console/pkg/config"
	"github.com/noah-isme/sma-adp-console/pkg/jobs"
	"github.com/noah-isme/sma-adp-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-console/pkg/middleware/requestid"
	"github.com/noah-isme/sma-adp-console/pkg/response"
	"github.com/noah-isme/sma-adp-console/pkg/storage"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

// @title SMA Console Gateway
// @version 1.0.0
// @description Typed gateway over the school administration REST backend
// @BasePath /
// @schemes http

// loginNavigator logs the redirect the transport asks for when the backend
// rejects the held credentials.
type loginNavigator struct {
	logger *zap.Logger
}

func (n loginNavigator) Navigate(path string) {
	n.logger.Warn("session ended by backend", zap.String("redirect", path))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}
	store, closeStore, err := openSessionStore(ctx, cfg, checks)
	if err != nil {
		logr.Fatal("failed to open session store", zap.String("store", cfg.Session.Store), zap.Error(err))
	}
	defer closeStore() //nolint:errcheck
	sess := session.New(store, cfg.Session.TTL, logr)

	metrics := service.NewMetricsService()

	client, err := transport.New(transport.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		WithCredentials: cfg.API.WithCredentials,
		LoginPath:       response.LoginPath,
		Logger:          logr,
		Observer:        metrics,
		Navigator:       loginNavigator{logger: logr},
	}, sess)
	if err != nil {
		logr.Fatal("failed to build api client", zap.Error(err))
	}

	refetch := jobs.NewTaskQueue("refetch", jobs.QueueConfig{
		Workers: cfg.Query.RefetchWorkers,
		Logger:  logr,
	})
	refetch.Start(ctx)
	defer refetch.Stop()

	queries := cache.NewQueryCache(cache.QueryConfig{
		TTL:       cfg.Query.CacheTTL,
		Scheduler: refetch,
		Recorder:  metrics,
		Logger:    logr,
	})

	backups, err := storage.NewLocalStorage(cfg.Storage.BackupsDir)
	if err != nil {
		logr.Fatal("failed to prepare backups dir", zap.String("dir", cfg.Storage.BackupsDir), zap.Error(err))
	}
	if cfg.Storage.BackupRetention > 0 {
		pruned, err := backups.CleanupOlderThan(cfg.Storage.BackupRetention)
		if err != nil {
			logr.Warn("backup cleanup failed", zap.Error(err))
		} else if len(pruned) > 0 {
			logr.Info("pruned downloaded backups", zap.Int("count", len(pruned)))
		}
	}

	console := service.NewConsole(service.ConsoleDeps{
		Auth:           repository.NewAuthRepository(client),
		Users:          repository.NewUserRepository(client),
		Students:       repository.NewStudentRepository(client),
		Teachers:       repository.NewTeacherRepository(client),
		Fees:           repository.NewFeeRepository(client),
		Library:        repository.NewLibraryRepository(client),
		Assignments:    repository.NewAssignmentRepository(client),
		Notices:        repository.NewNoticeRepository(client),
		Messages:       repository.NewMessageRepository(client),
		Roles:          repository.NewRoleRepository(client),
		Settings:       repository.NewSettingsRepository(client),
		Session:        sess,
		Cache:          queries,
		Backups:        backups,
		Validator:      validator.New(),
		Logger:         logr,
		PageSize:       cfg.Dashboard.PageSize,
		SearchDebounce: cfg.Query.SearchDebounce,
	})
	console.Auth.Restore(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handlers := handler.NewHandlers(console, metrics, checks, cfg.Dashboard.PageSize)
	handler.Register(r, handlers, console.Auth, logr.Named("audit"))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}

// openSessionStore builds the configured credential store and registers its
// readiness check.
func openSessionStore(ctx context.Context, cfg *config.Config, checks map[string]handler.ReadinessCheck) (session.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		return session.NewMemoryStore(), noop, nil
	case config.SessionStoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		store := session.NewRedisStore(client, cfg.Session.KeyPrefix)
		return store, store.Close, nil
	case config.SessionStoreFile, "":
		store, err := session.NewFileStore(cfg.Session.File)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
