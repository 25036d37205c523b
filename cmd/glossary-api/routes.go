package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/glossary-api/internal/handler"
	"github.com/noah-isme/glossary-api/internal/middleware"
	"github.com/noah-isme/glossary-api/pkg/config"
	"github.com/noah-isme/glossary-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/glossary-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/glossary-api/pkg/middleware/requestid"
)

type routeDeps struct {
	apiPrefix  string
	terms      *handler.TermHandler
	categories *handler.CategoryHandler
	health     *handler.HealthHandler
	// auth and session are nil when session gating is disabled.
	auth    *handler.AuthHandler
	session gin.HandlerFunc
	docs    bool
}

func registerRoutes(r *gin.Engine, deps routeDeps, cfg *config.Config, logr *zap.Logger, metrics middleware.RequestObserver) {
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if deps.docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.apiPrefix)

	public := api.Group("/public")
	public.GET("/terms", deps.terms.ListPublic)
	public.GET("/categories", deps.categories.List)

	if deps.auth != nil {
		api.POST("/login", deps.auth.Login)
		api.POST("/logout", deps.auth.Logout)
		api.GET("/auth/status", deps.auth.Status)
		api.GET("/status", deps.auth.Status)
	}

	admin := api.Group("")
	if deps.session != nil {
		admin.Use(deps.session)
	}
	admin.GET("/terms", deps.terms.ListAdmin)
	admin.GET("/terms/export", deps.terms.Export)
	admin.POST("/terms", deps.terms.Create)
	admin.PUT("/terms", deps.terms.Update)
	admin.DELETE("/terms", deps.terms.Delete)
	admin.DELETE("/terms/", deps.terms.Delete)
	admin.DELETE("/terms/:id", deps.terms.Delete)
	admin.GET("/categories", deps.categories.List)
}
