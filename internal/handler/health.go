package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The webhook breaker state and DLQ sizes are informational only.
func Health(db *gorm.DB, rdb *redis.Client, webhookCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if webhookCB != nil {
			body["webhook"] = webhookCB.State().String()
		}
		if redisStatus == "connected" {
			body["dlq"] = worker.DLQLengths(ctx, rdb)
		}
		c.JSON(status, body)
	}
}
