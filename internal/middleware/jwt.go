package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"storefront/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// CtxUserID is the context key holding the authenticated user's ID
const CtxUserID = "userID"

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)                          // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(CtxUserID, claims.UserID) // Store userID in context; the role is re-read by AdminOnlyMiddleware
		c.Next()                        // Proceed to the next handler
	}
}

// UserID returns the authenticated user's ID, false when the request is anonymous
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
