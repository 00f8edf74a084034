// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voxalab/pitchvillage/internal/di"
	"github.com/voxalab/pitchvillage/internal/services"
)

// SetupRouter wires HTTP routes to services held in the container.
func SetupRouter(container *di.Container, logger *zap.Logger, debug bool) (*gin.Engine, error) {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	simService, ok := container.Get("sim").(*services.SimService)
	if !ok {
		return nil, fmt.Errorf("sim service not initialized")
	}
	pitchService, ok := container.Get("pitch").(*services.PitchService)
	if !ok {
		return nil, fmt.Errorf("pitch service not initialized")
	}
	hub, ok := container.Get("hub").(*Hub)
	if !ok {
		return nil, fmt.Errorf("websocket hub not initialized")
	}

	handler := NewHandler(simService, pitchService, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(corsMiddleware())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", handler.GetHealth)
		apiGroup.GET("/state", handler.GetState)
		apiGroup.GET("/graph", handler.GetGraph)

		apiGroup.GET("/history", handler.GetHistory)
		apiGroup.GET("/history/snapshot", handler.GetHistorySnapshot)
		apiGroup.POST("/playback", handler.PostPlayback)

		apiGroup.POST("/ask", handler.PostAsk)
		apiGroup.POST("/mode", handler.PostMode)
		apiGroup.POST("/session", handler.PostSession)

		apiGroup.GET("/pitch", handler.GetPitch)
		apiGroup.POST("/pitch/advance", handler.PostPitchAdvance)
		apiGroup.POST("/pitch/reset", handler.PostPitchReset)

		apiGroup.POST("/circles", handler.PostCircle)
		apiGroup.DELETE("/circles/:id", handler.DeleteCircle)
		apiGroup.POST("/characters/:id/sit", handler.PostSit)
	}

	r.GET("/ws", hub.HandleWS)

	return r, nil
}
