package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database"
)

// PoolReporter exposes the database pool state
type PoolReporter interface {
	PoolMetrics() database.ConnectionPoolMetrics
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status          string     `json:"status"`
	OpenConnections int        `json:"openConnections"`
	InUse           int        `json:"inUse"`
	Idle            int        `json:"idle"`
	WaitCount       int64      `json:"waitCount"`
	SampledAt       *time.Time `json:"sampledAt,omitempty"`
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	pool PoolReporter
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(pool PoolReporter) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	metrics := h.pool.PoolMetrics()
	resp := HealthResponse{
		Status:          "ok",
		OpenConnections: metrics.OpenConnections,
		InUse:           metrics.InUse,
		Idle:            metrics.IdleConnections,
		WaitCount:       metrics.WaitCount,
	}
	if !metrics.SampledAt.IsZero() {
		resp.SampledAt = &metrics.SampledAt
	}
	if !metrics.Healthy {
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
