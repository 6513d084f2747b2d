package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prooftalent/assessment-backend/internal/response"
	"github.com/redis/go-redis/v9"
)

// SystemHandler serves operational endpoints.
type SystemHandler struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client) *SystemHandler {
	return &SystemHandler{pool: pool, rdb: rdb}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := h.pool.Ping(ctx) == nil
	redisOK := h.rdb.Ping(ctx).Err() == nil

	status := http.StatusOK
	overall := "ok"
	if !dbOK || !redisOK {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	response.Success(c, status, gin.H{
		"status":    overall,
		"database":  dbOK,
		"redis":     redisOK,
		"timestamp": time.Now().UTC(),
	})
}
