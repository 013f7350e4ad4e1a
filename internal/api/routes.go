package api

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rawblock/cryptomunge/internal/registry"
)

// SetupRouter wires every HTTP/WebSocket route this engine exposes. The
// CORS middleware and route grouping follow the same SetupRouter shape as
// before; only the handler set and the protected-route dependencies
// (RunManager instead of btcClient/scanner) differ.
func SetupRouter(reg *registry.Registry, runs *RunManager, wsHub *Hub, authToken string, rateLimitPerMin, rateLimitBurst int) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := NewHandler(reg, runs)

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/ws/stream", wsHub.Subscribe)
		pub.GET("/contenders", handler.handleGetContenders)
		pub.GET("/runs/:id", handler.handleGetRun)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(rateLimitPerMin, rateLimitBurst).Middleware())
	{
		protected.POST("/runs/munge", handler.handleStartMunge)
		protected.POST("/runs/btr", handler.handleStartBTR)
		protected.POST("/runs/bestfit", handler.handleStartBestFit)
		protected.POST("/runs/:id/cancel", handler.handleCancelRun)
		protected.POST("/sequences/parse", handler.handleParseSequence)
		protected.GET("/sequences/:id/serialize", handler.handleSerializeSequence)
	}

	return r
}

// HealthCheck is a minimal liveness probe usable outside the gin router
// (e.g. a container orchestrator's exec probe, or a startup self-check),
// exposing the same check as handleHealth but callable without an HTTP
// round-trip.
func HealthCheck(reg *registry.Registry) bool {
	return reg.Len() > 0
}
