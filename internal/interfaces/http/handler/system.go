package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pentol/backend/internal/infrastructure/persistence"
	"github.com/pentol/backend/internal/interfaces/http/dto"
)

const healthPingTimeout = 2 * time.Second

// DatabaseChecker reports database reachability and pool usage
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	db        DatabaseChecker
	name      string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil, in which
// case health only reports liveness.
func NewSystemHandler(db DatabaseChecker, name, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		name:      name,
		version:   version,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse is the liveness and database status
type HealthResponse struct {
	Status   string          `json:"status"`
	Database string          `json:"database"`
	Uptime   string          `json:"uptime"`
	Pool     *PoolStatsBrief `json:"pool,omitempty"`
}

// PoolStatsBrief is the part of the pool stats worth watching
type PoolStatsBrief struct {
	Open  int   `json:"open"`
	InUse int   `json:"in_use"`
	Idle  int   `json:"idle"`
	Waits int64 `json:"waits"`
}

// GetSystemInfo handles GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    h.uptime(),
	})
}

// Health handles GET /health. A failed database ping is 503 so load
// balancers drain the instance.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "skipped", Uptime: h.uptime()}
	if h.db == nil {
		h.Success(c, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		_ = c.Error(err)
		resp.Status, resp.Database = "degraded", "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	resp.Database = "ok"
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &PoolStatsBrief{
			Open:  stats.OpenConnections,
			InUse: stats.InUse,
			Idle:  stats.Idle,
			Waits: stats.WaitCount,
		}
	}
	h.Success(c, resp)
}

func (h *SystemHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}
