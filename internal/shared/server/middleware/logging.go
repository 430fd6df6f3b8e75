package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		// Handlers tag the resource they touched so logs can be joined per entity.
		for _, key := range []string{"documentId", "contractId", "salaryRequestId", "statusTransition", "cacheHit"} {
			if v, ok := c.Get(key); ok {
				fields[logKey(key)] = v
			}
		}
		telemetry.Info("request.complete", fields)
	}
}

func logKey(ctxKey string) string {
	switch ctxKey {
	case "documentId":
		return "document_id"
	case "contractId":
		return "contract_id"
	case "salaryRequestId":
		return "salary_request_id"
	case "statusTransition":
		return "status_transition"
	case "cacheHit":
		return "cache_hit"
	default:
		return ctxKey
	}
}
