package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/rampgate/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(checkout *service.CheckoutService, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	handlers := NewOnrampHandlers(checkout)

	onramp := router.Group("/onramp")
	{
		onramp.POST("/session", handlers.CreateSession)
		onramp.POST("/confirm", handlers.Confirm)
	}

	router.GET("/healthz", handlers.Health)

	return router
}
