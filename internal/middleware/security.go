package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-mcp-server/internal/service"
)

// CorrelationIDHeader carries the per-request audit ID
const CorrelationIDHeader = "X-Correlation-ID"

// SecurityHeaders adds security headers to all responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Enforce HTTPS (only in production)
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		// JSON API only, nothing to render
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Patient data must never end up in shared caches or referrers
		c.Header("Cache-Control", "no-store")
		c.Header("Referrer-Policy", "no-referrer")

		c.Next()
	}
}

// CorrelationID adds a unique correlation ID to each request for audit trails
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if correlation ID already exists in headers
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		// Set correlation ID in context and response header
		c.Set("correlation_id", correlationID)
		c.Header(CorrelationIDHeader, correlationID)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), correlationID))

		c.Next()
	}
}

// Recovery turns handler panics into a JSON 500
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"correlation_id": c.GetString("correlation_id"),
			"path":           c.Request.URL.Path,
			"panic":          recovered,
		}).Error("Recovered from handler panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":          "Internal server error",
			"correlation_id": c.GetString("correlation_id"),
		})
	})
}

// RequestTimeout bounds the request context so slow handlers are cancelled
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusRequestTimeout, gin.H{
				"error":          "Request timeout",
				"correlation_id": c.GetString("correlation_id"),
				"timestamp":      time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
}

type auditRecord struct {
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlation_id"`
	Method        string `json:"method"`
	Path          string `json:"path"`
	Status        int    `json:"status"`
	Latency       string `json:"latency"`
	ClientIP      string `json:"client_ip"`
	UserAgent     string `json:"user_agent"`
	ResponseSize  int    `json:"response_size"`
}

// AuditLogger writes one JSON line per request. Request bodies are never
// logged.
func AuditLogger(logger *logrus.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: logger.Out,
		Formatter: func(param gin.LogFormatterParams) string {
			correlationID, _ := param.Keys["correlation_id"].(string)
			line, err := json.Marshal(auditRecord{
				Timestamp:     param.TimeStamp.UTC().Format(time.RFC3339),
				CorrelationID: correlationID,
				Method:        param.Method,
				Path:          param.Path,
				Status:        param.StatusCode,
				Latency:       param.Latency.String(),
				ClientIP:      param.ClientIP,
				UserAgent:     param.Request.UserAgent(),
				ResponseSize:  param.BodySize,
			})
			if err != nil {
				return ""
			}
			return string(line) + "\n"
		},
	})
}
