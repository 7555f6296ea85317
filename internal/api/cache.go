package api

import (
	"time" // Cache TTL

	"storefront/internal/utils" // Cache interface

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Cache key prefixes, one per invalidation group
const (
	prefixProducts   = "products:"
	prefixCategories = "categories:"
	prefixDashboard  = "admin:dashboard"
	prefixAdminUsers = "admin:users:"
)

// adminTTL is shorter than the catalog TTL so admin views stay fresh
const adminTTL = 60 * time.Second

// cacheGet loads key into dest. Cache failures are logged and treated as a miss.
func cacheGet(c *gin.Context, cache utils.Cache, key string, dest any) bool {
	found, err := cache.Get(c.Request.Context(), key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	return found
}

// cacheSet stores value under key, logging failures
func cacheSet(c *gin.Context, cache utils.Cache, key string, value any, ttl time.Duration) {
	if err := cache.Set(c.Request.Context(), key, value, ttl); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
}

// invalidate drops every key under the given prefixes
func invalidate(c *gin.Context, cache utils.Cache, prefixes ...string) {
	for _, p := range prefixes {
		if err := cache.DeletePrefix(c.Request.Context(), p); err != nil {
			logrus.WithFields(logrus.Fields{"prefix": p, "error": err.Error()}).Warn("Cache invalidation failed")
		}
	}
}
