package middleware

import (
	"time" // Preflight cache age

	"github.com/gin-contrib/cors" // CORS handling
	"github.com/gin-gonic/gin"    // Gin web framework
)

// CORS allows the configured storefront origins. A single "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true } // Credentials forbid a literal "*"
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
