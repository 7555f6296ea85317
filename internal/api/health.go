package api

import (
	"net/http" // HTTP status codes
	"time"     // Probe TTL

	"storefront/internal/utils" // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

const healthKey = "health:probe"

// HealthHandler reports database and cache reachability.
// A failed database gives 503; a failed cache only degrades the status.
func HealthHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		resp := gin.H{"status": "ok", "db": "ok", "cache": "ok"}
		status := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Health check: database unreachable")
			resp["db"] = "error"
			resp["status"] = "error"
			status = http.StatusServiceUnavailable
		}
		// Round-trip a probe key so both writes and deletes are exercised
		err = cache.Set(ctx, healthKey, time.Now().Unix(), 10*time.Second)
		if err == nil {
			err = cache.Delete(ctx, healthKey)
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Health check: cache unreachable")
			resp["cache"] = "error"
			if status == http.StatusOK {
				resp["status"] = "degraded"
			}
		}
		c.JSON(status, resp)
	}
}
