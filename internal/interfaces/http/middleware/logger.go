package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"easy-invoice.backend/pkg/logger"
)

// LoggerMiddleware emits one structured access-log line per request after the
// handler chain finishes. The request id is picked up from the request
// context set by RequestIDMiddleware.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		logger.LogRequest(c.Request.Context(), c.Request.Method, path,
			c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
