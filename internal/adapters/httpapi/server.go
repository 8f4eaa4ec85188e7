// Package httpapi exposes the engine over REST plus a server-sent events
// stream. The dashboard and the prediction generator are both clients of
// this surface.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/app/engine"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/broadcast"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

type Server struct {
	engine *engine.Engine
	hub    *broadcast.Hub
	obs    ports.Observability
	router *gin.Engine
}

func NewServer(eng *engine.Engine, hub *broadcast.Hub, obs ports.Observability) *Server {
	s := &Server{engine: eng, hub: hub, obs: obs}

	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.POST("/ingest/hardware", s.ingestHardware)
	r.POST("/ingest/prediction", s.ingestPrediction)

	api := r.Group("/api")
	{
		api.GET("/hardware_output", s.hardwareOutput)
		api.GET("/predictions", s.predictions)
		api.GET("/live_latest", s.liveLatest)
		api.POST("/deploy", s.deploy)
		api.GET("/stage_state", s.stageState)
		api.POST("/stage_state", s.setStageState)
		api.GET("/manual_stage", s.manualStage)
		api.POST("/manual_stage", s.setManualStage)
		api.POST("/sms_alert", s.smsAlert)
		api.GET("/debug", s.debug)
		api.GET("/updates", s.updates)
	}

	r.GET("/status", s.status)
	r.GET("/_health", s.health)

	s.router = r
	return s
}

// Handler returns the root http handler, used by the runtime and by tests.
func (s *Server) Handler() http.Handler { return s.router }

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// fail maps domain errors onto HTTP status codes.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidNode),
		errors.Is(err, domain.ErrUnknownAsset),
		errors.Is(err, domain.ErrMalformedPayload):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
