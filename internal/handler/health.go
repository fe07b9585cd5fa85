package handler

import (
	"net/http"
	"time"

	"github.com/contactbook/backend/pkg/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis redis.Client
}

func NewHealthHandler(db *gorm.DB, redis redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check reports liveness of the service and its backing stores. The service
// is degraded rather than down when redis is unavailable, so a failed cache
// ping does not fail the check.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "up"
	cacheStatus := "up"

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			dbStatus = "down"
			status = http.StatusServiceUnavailable
		}
	} else {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	if h.redis == nil || !h.redis.IsEnabled() {
		cacheStatus = "disabled"
	} else if err := h.redis.Ping(c.Request.Context()); err != nil {
		cacheStatus = "down"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"database":  dbStatus,
		"cache":     cacheStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
