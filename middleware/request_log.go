package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fedgate/admission/logger"
)

// RequestLogConfig tunes the access log.
type RequestLogConfig struct {
	// Logger defaults to the "http" module logger.
	Logger *logger.CtxZapLogger

	// SkipPaths are not logged (health probes, metrics scrapes).
	SkipPaths []string
}

// RequestLog replaces gin.Logger() with structured access logs. Level
// follows the response class: 5xx error, 4xx warn, everything else info.
// Trace ids injected by TraceID are picked up through the context.
func RequestLog(cfg RequestLogConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = logger.GetLogger("http")
	}

	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("body_size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.ErrorCtx(ctx, "request completed", fields...)
		case status >= 400:
			log.WarnCtx(ctx, "request completed", fields...)
		default:
			log.InfoCtx(ctx, "request completed", fields...)
		}
	}
}
