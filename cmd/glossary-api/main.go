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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/glossary-api/api/swagger"
	"github.com/noah-isme/glossary-api/internal/handler"
	"github.com/noah-isme/glossary-api/internal/middleware"
	"github.com/noah-isme/glossary-api/internal/repository"
	"github.com/noah-isme/glossary-api/internal/service"
	"github.com/noah-isme/glossary-api/pkg/auditlog"
	"github.com/noah-isme/glossary-api/pkg/cache"
	"github.com/noah-isme/glossary-api/pkg/config"
	"github.com/noah-isme/glossary-api/pkg/database"
	"github.com/noah-isme/glossary-api/pkg/logger"
)

// @title Glossary API
// @version 1.0.0
// @description Terms and categories glossary with public and admin views
// @BasePath /api
// @schemes http

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logr.Info("database schema applied")
	}

	var rdb *redis.Client
	if cfg.Session.Enabled || cfg.Cache.CategoriesEnabled {
		rdb, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var audit *auditlog.Writer
	if cfg.Audit.Enabled {
		audit = auditlog.New(cfg.Audit.Dir, logr.Named("audit"))
	}

	termRepo := repository.NewTermRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	var categoryCache *service.CacheService
	if cfg.Cache.CategoriesEnabled {
		categoryCache = service.NewCacheService(repository.NewCacheRepository(rdb, "glossary:"), metrics, cfg.Cache.CategoriesTTL, logr, true)
	}

	termSvc := service.NewTermService(termRepo, categoryRepo, audit, metrics, validate, logr.Named("terms"))
	categorySvc := service.NewCategoryService(categoryRepo, categoryCache, logr.Named("categories"))
	exportSvc := service.NewExportService(termSvc, validate, logr.Named("export"))
	categorySvc.Invalidate(context.Background())

	deps := routeDeps{
		apiPrefix:  cfg.APIPrefix,
		terms:      handler.NewTermHandler(termSvc, exportSvc),
		categories: handler.NewCategoryHandler(categorySvc),
		health:     handler.NewHealthHandler(metrics, db, logr),
		docs:       cfg.Env != config.EnvProduction,
	}
	if cfg.Session.Enabled {
		authSvc := service.NewAuthService(
			repository.NewAdminRepository(db),
			repository.NewSessionRepository(rdb),
			audit,
			validate,
			logr.Named("auth"),
			service.AuthConfig{Secret: cfg.Session.Secret, SessionTTL: cfg.Session.TTL, Issuer: cfg.Session.Issuer},
		)
		deps.auth = handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure})
		deps.session = middleware.RequireSession(authSvc, cfg.Session.CookieName)
	} else {
		logr.Warn("session gating disabled; admin routes are open")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	registerRoutes(r, deps, cfg, logr, metrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "auth_enabled", cfg.Session.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logr.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
