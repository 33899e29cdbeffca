package router

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskminder/internal/handler"
)

// SetupRouter configures the Gin router with routes and middleware
func SetupRouter(h *handler.Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	h.SetupRoutes(r)
	return r
}

// requestLogger writes one access log entry per request through logrus, so
// HTTP traffic shares the application log format.
func requestLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
		Output:    io.Discard,
		Formatter: func(param gin.LogFormatterParams) string {
			entry := logrus.WithFields(logrus.Fields{
				"client_ip":  param.ClientIP,
				"method":     param.Method,
				"path":       param.Path,
				"status":     param.StatusCode,
				"latency":    param.Latency.String(),
				"user_agent": param.Request.UserAgent(),
			})
			switch {
			case param.StatusCode >= 500:
				entry.Error(param.ErrorMessage)
			case param.StatusCode >= 400:
				entry.Warn(param.ErrorMessage)
			default:
				entry.Info("request served")
			}
			return ""
		},
	})
}
