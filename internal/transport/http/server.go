package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avolkov/sentichat/internal/config"
	"github.com/avolkov/sentichat/internal/core"
)

// NewServer builds the HTTP server exposing the health check and the
// chat websocket endpoint.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
