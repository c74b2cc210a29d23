package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/evask/materialforge-backend/internal/handlers"
	"github.com/evask/materialforge-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	MaterialHandler *handlers.MaterialHandler
	TokensHandler   *handlers.TokensHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Materials
	protected.GET("/materials/models/pricing", cfg.MaterialHandler.Pricing)
	protected.POST("/materials/generate", cfg.MaterialHandler.Generate)
	protected.GET("/materials", cfg.MaterialHandler.List)
	protected.GET("/materials/:id", cfg.MaterialHandler.Get)
	protected.PUT("/materials/:id", cfg.MaterialHandler.Update)
	protected.DELETE("/materials/:id", cfg.MaterialHandler.Delete)
	protected.GET("/materials/:id/export/:format", cfg.MaterialHandler.Export)
	// Tokens
	protected.GET("/tokens/usage", cfg.TokensHandler.Usage)

	return router
}
