// Package middleware adapts the admission controller to gin. It reads
// the caller context left by the authentication layer, runs the check,
// renders the quota headers and turns denials into 429 responses.
package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/fedgate/admission/admission"
)

// Context keys populated by the authentication layer (upstream of this
// middleware) and by the GraphQL parsing layer.
const (
	KeyUserID    = "user_id"
	KeyRoles     = "roles"
	KeyPremium   = "premium"
	KeyDocument  = "graphql_document"
	KeyVariables = "graphql_variables"
)

// AdmissionConfig tunes the middleware.
type AdmissionConfig struct {
	// Controller runs the actual checks (required).
	Controller *admission.Controller

	// CallerFunc extracts the caller from the gin context. The default
	// reads the auth layer's context keys and gin's ClientIP.
	CallerFunc func(*gin.Context) admission.Caller

	// RequestFunc builds the full admission request; the default pairs
	// CallerFunc with the parsed document and variables from the context.
	RequestFunc func(*gin.Context) admission.Request

	// RejectionHandler renders a denying verdict; the default writes the
	// coded 429 JSON body.
	RejectionHandler func(*gin.Context, *admission.Verdict)

	// RefundOnServerError returns the consumed slot when the downstream
	// handler responds with a 5xx status.
	RefundOnServerError bool

	// SkipPaths are exempt from admission entirely (health, metrics).
	SkipPaths []string
}

// DefaultAdmissionConfig returns the config used by Admission().
func DefaultAdmissionConfig(ctrl *admission.Controller) AdmissionConfig {
	return AdmissionConfig{
		Controller:          ctrl,
		RefundOnServerError: true,
	}
}

// Admission creates the middleware with default behavior.
func Admission(ctrl *admission.Controller) gin.HandlerFunc {
	return AdmissionWithConfig(DefaultAdmissionConfig(ctrl))
}

// AdmissionWithConfig creates the middleware.
func AdmissionWithConfig(cfg AdmissionConfig) gin.HandlerFunc {
	if cfg.Controller == nil {
		panic("AdmissionConfig.Controller cannot be nil")
	}
	if cfg.CallerFunc == nil {
		cfg.CallerFunc = CallerFromContext
	}
	if cfg.RequestFunc == nil {
		callerFunc := cfg.CallerFunc
		cfg.RequestFunc = func(c *gin.Context) admission.Request {
			return admission.Request{
				Caller:    callerFunc(c),
				Document:  documentFromContext(c),
				Variables: variablesFromContext(c),
			}
		}
	}
	if cfg.RejectionHandler == nil {
		budget := cfg.Controller.Budget()
		cfg.RejectionHandler = func(c *gin.Context, v *admission.Verdict) {
			rejectWithCodedError(c, v, budget)
		}
	}

	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	headerStyle := cfg.Controller.HeaderStyle()

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		req := cfg.RequestFunc(c)
		verdict := cfg.Controller.Admit(c.Request.Context(), req)

		for key, value := range admission.RenderHeaders(headerStyle, verdict) {
			c.Header(key, value)
		}

		if !verdict.Allowed {
			cfg.RejectionHandler(c, verdict)
			return
		}

		c.Next()

		if cfg.RefundOnServerError && c.Writer.Status() >= http.StatusInternalServerError {
			cfg.Controller.Refund(req)
		}
	}
}

// CallerFromContext reads the caller the auth layer stored on the gin
// context. Missing or mistyped keys degrade to the anonymous caller.
func CallerFromContext(c *gin.Context) admission.Caller {
	caller := admission.Caller{ClientIP: c.ClientIP()}

	if v, ok := c.Get(KeyUserID); ok {
		if id, ok := v.(string); ok {
			caller.UserID = id
		}
	}
	if v, ok := c.Get(KeyRoles); ok {
		if roles, ok := v.([]string); ok {
			caller.Roles = roles
		}
	}
	if v, ok := c.Get(KeyPremium); ok {
		if premium, ok := v.(bool); ok {
			caller.Premium = premium
		}
	}
	return caller
}

func documentFromContext(c *gin.Context) *ast.QueryDocument {
	if v, ok := c.Get(KeyDocument); ok {
		if doc, ok := v.(*ast.QueryDocument); ok {
			return doc
		}
	}
	return nil
}

func variablesFromContext(c *gin.Context) map[string]interface{} {
	if v, ok := c.Get(KeyVariables); ok {
		if vars, ok := v.(map[string]interface{}); ok {
			return vars
		}
	}
	return nil
}

// rejectWithCodedError writes the structured 429 body shared by both
// rejection reasons.
func rejectWithCodedError(c *gin.Context, v *admission.Verdict, budget int) {
	err := admission.RejectionError(v, budget)
	if err == nil {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}

	if v.Reason == admission.ReasonRateLimited && v.RetryAfter > 0 {
		c.Header("Retry-After", retryAfterSeconds(v))
	}

	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{
		"code":    err.Code(),
		"reason":  err.Reason(),
		"message": err.Message(),
		"data":    err.Data(),
	})
}

func retryAfterSeconds(v *admission.Verdict) string {
	secs := int64(math.Ceil(v.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
