package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the API engine. Release mode keeps gin quiet; the
// access log, when wanted, comes from our own slog-backed middleware.
func SetupRouter(log *slog.Logger, debug bool, roomServer *RoomServer) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if debug {
		r.Use(requestLogger(log))
	}

	roomServer.Register(r)

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
