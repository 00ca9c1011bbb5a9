package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler serves the public health check.
type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

// Health reports service status, uptime and database connectivity.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	httpStatus := http.StatusOK

	sqlDB, errDB := h.db.DB()
	if errDB != nil {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	} else if errPing := sqlDB.PingContext(c.Request.Context()); errPing != nil {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, envelope{
		Success: httpStatus == http.StatusOK,
		Data: gin.H{
			"status":    status,
			"uptime":    time.Since(h.started).String(),
			"timestamp": time.Now().UTC(),
		},
	})
}
