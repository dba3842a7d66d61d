package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fedgate/admission/logger"
	"github.com/fedgate/admission/testutil"
)

func TestRequestLog_LevelsFollowStatus(t *testing.T) {
	log, entries := logger.NewTestLogger("http")

	engine := gin.New()
	engine.Use(RequestLog(RequestLogConfig{Logger: log}))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	testutil.GET("/ok").Do(engine)
	testutil.GET("/missing").Do(engine)
	testutil.GET("/boom").Do(engine)

	all := entries.All()
	require.Len(t, all, 3)
	assert.Equal(t, zapcore.InfoLevel, all[0].Level)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[2].Level)

	fields := all[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "/ok", fields["path"])
}

func TestRequestLog_SkipPaths(t *testing.T) {
	log, entries := logger.NewTestLogger("http")

	engine := gin.New()
	engine.Use(RequestLog(RequestLogConfig{Logger: log, SkipPaths: []string{"/health"}}))
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	testutil.GET("/health").Do(engine)
	assert.Zero(t, entries.Len())
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	resp := testutil.GET("/panic").Do(engine)
	assert.Equal(t, http.StatusInternalServerError, resp.Status())
	assert.NotContains(t, resp.Body(), "goroutine", "stack must not leak to clients")
}
