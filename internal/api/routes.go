package api

import (
	"github.com/gin-gonic/gin"

	"github.com/veritext/veritext/internal/config"
	"github.com/veritext/veritext/internal/engine"
	"github.com/veritext/veritext/internal/repository"
)

func SetupRoutes(
	cfg *config.Config,
	composer *engine.Composer,
	docsRepo *repository.DocumentsRepository,
	checksRepo *repository.ChecksRepository,
) *gin.Engine {
	router := gin.Default()

	handler := NewHandler(cfg, composer, docsRepo, checksRepo)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/checks", handler.CreateCheck)
		api.GET("/checks/:id", handler.GetCheck)
		api.GET("/checks", handler.ListChecks)
		api.POST("/search", handler.Search)
		api.POST("/compare", handler.Compare)
		api.GET("/stats", handler.Stats)
	}

	return router
}
