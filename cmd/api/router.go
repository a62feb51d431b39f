package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"podcast-catalog/internal/infrastructure/storage"
	"podcast-catalog/internal/shared/middleware"
	"podcast-catalog/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	// health và static không tính vào rate limit
	router.GET("/health", healthCheckHandler(c))

	if local, ok := c.Store.(*storage.LocalStorage); ok {
		router.Group(storage.LocalURLPrefix, uploadHeaders()).Static("/", local.Dir())
	}

	api := router.Group("/api")
	api.Use(c.RateLimiter.Middleware())

	auth := c.AuthMiddleware()

	c.UserHandler.RegisterRoutes(api.Group("/auth"), auth)
	c.PodcastHandler.RegisterRoutes(api.Group("/podcasts"), auth)
	c.UploadHandler.RegisterRoutes(api.Group("/upload"), auth)
	c.CatalogHandler.RegisterRoutes(api.Group("/catalog"))

	return router
}

// uploadHeaders: file do user upload không được chạy như trang của API origin
func uploadHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; sandbox")
		c.Next()
	}
}

// ========================================
// HEALTH
// ========================================

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c.Health != nil {
			checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
			defer cancel()

			if err := c.Health.HealthCheck(checkCtx); err != nil {
				log.Warn().Err(err).Msg("Health check failed")
				ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
