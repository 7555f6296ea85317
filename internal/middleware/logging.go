package middleware

import (
	"net/http" // HTTP status codes
	"time"     // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request IDs
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an ID and logs it once it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()                   // Start time for latency
		reqID := c.GetHeader(RequestIDHeader) // Reuse a caller-supplied ID
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("requestID", reqID)
		c.Header(RequestIDHeader, reqID) // Echo the ID to the client

		c.Next() // Run the rest of the chain

		entry := logrus.WithFields(logrus.Fields{
			"request_id": reqID,                            // Request ID
			"method":     c.Request.Method,                 // HTTP method
			"path":       c.FullPath(),                     // Route pattern
			"status":     c.Writer.Status(),                // Response status
			"latency_ms": time.Since(start).Milliseconds(), // Handling time
			"client_ip":  c.ClientIP(),                     // Caller address
		})
		if uid, ok := UserID(c); ok {
			entry = entry.WithField("user_id", uid)
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

// Recovery converts panics into a JSON 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"), // Request ID
			"path":       c.Request.URL.Path,       // Request path
			"panic":      recovered,                // Panic value
		}).Error("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
