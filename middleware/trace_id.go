package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/fedgate/admission/logger"
)

const (
	// KeyTraceID gin context key holding the request trace id.
	KeyTraceID = "trace_id"

	// HeaderTraceID inbound/outbound trace id header.
	HeaderTraceID = "X-Trace-ID"
)

// TraceConfig tunes trace id propagation.
type TraceConfig struct {
	// Header overrides the trace id header name.
	Header string

	// EchoHeader writes the trace id back on the response.
	EchoHeader bool

	// Generator creates an id when the request carries none.
	Generator func() string
}

// DefaultTraceConfig returns the config used by plain TraceID usage.
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		Header:     HeaderTraceID,
		EchoHeader: true,
		Generator:  func() string { return uuid.New().String() },
	}
}

// TraceID propagates a per-request trace id so admission decisions can
// be correlated across the gateway's log streams. An active OTel span
// takes precedence; otherwise the inbound header is honored and a uuid
// is minted as a last resort. The id lands in the request context, so
// every Ctx log call downstream carries it automatically.
func TraceID(cfg TraceConfig) gin.HandlerFunc {
	if cfg.Header == "" {
		cfg.Header = HeaderTraceID
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.New().String() }
	}

	return func(c *gin.Context) {
		var traceID string
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		} else {
			traceID = c.GetHeader(cfg.Header)
			if traceID == "" {
				traceID = cfg.Generator()
			}
		}

		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Set(KeyTraceID, traceID)

		if cfg.EchoHeader {
			c.Writer.Header().Set(cfg.Header, traceID)
		}

		c.Next()
	}
}

// GetTraceID reads the trace id stored on the gin context.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(KeyTraceID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
