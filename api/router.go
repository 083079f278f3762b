package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/api/handlers"
	"github.com/yourusername/edufetch-go/api/middleware"
	"github.com/yourusername/edufetch-go/internal/app"
)

// Version is the API version reported by the health endpoint
const Version = "1.0.0"

// SetupRouter sets up the HTTP router for the status API
func SetupRouter(documents, videos *app.Scheduler, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	healthHandler := handlers.NewHealthHandler(Version)
	router.GET("/health", healthHandler.Health)

	statusHandler := handlers.NewStatusHandler(documents, videos)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/progress", statusHandler.GetProgress)
		v1.GET("/tasks", statusHandler.GetTasks)
	}

	return router
}
