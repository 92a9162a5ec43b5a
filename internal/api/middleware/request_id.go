package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// CallerID records the optional X-Caller-ID header so created records can be
// attributed to an owner.
func CallerID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller := c.GetHeader("X-Caller-ID"); caller != "" {
			c.Set("caller_id", caller)
		}
		c.Next()
	}
}
