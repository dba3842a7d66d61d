package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fedgate/admission/testutil"
)

func TestTraceID_GeneratesWhenMissing(t *testing.T) {
	engine := gin.New()
	engine.Use(TraceID(DefaultTraceConfig()))
	engine.GET("/", func(c *gin.Context) {
		assert.NotEmpty(t, GetTraceID(c))
		c.Status(http.StatusOK)
	})

	resp := testutil.GET("/").Do(engine)
	assert.NotEmpty(t, resp.Header(HeaderTraceID))
}

func TestTraceID_HonorsInboundHeader(t *testing.T) {
	engine := gin.New()
	engine.Use(TraceID(DefaultTraceConfig()))
	engine.GET("/", func(c *gin.Context) {
		assert.Equal(t, "trace-123", GetTraceID(c))
		c.Status(http.StatusOK)
	})

	resp := testutil.GET("/").WithTraceID("trace-123").Do(engine)
	assert.Equal(t, "trace-123", resp.Header(HeaderTraceID))
}

func TestTraceID_NoEchoHeader(t *testing.T) {
	cfg := DefaultTraceConfig()
	cfg.EchoHeader = false

	engine := gin.New()
	engine.Use(TraceID(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := testutil.GET("/").Do(engine)
	assert.Empty(t, resp.Header(HeaderTraceID))
}
