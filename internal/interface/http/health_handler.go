package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-platform/pkg/response"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves / and /health for one service. Ready flips once
// the startup readiness loop and migrations succeeded.
type HealthHandler struct {
	Service string
	Version string
	DB      Pinger
	Ready   *atomic.Bool
}

func NewHealthHandler(service, version string, db Pinger, ready *atomic.Bool) *HealthHandler {
	return &HealthHandler{Service: service, Version: version, DB: db, Ready: ready}
}

type healthStatus struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	st := healthStatus{Status: "healthy", Service: h.Service, Database: "connected"}

	if h.Ready != nil && !h.Ready.Load() {
		st.Status, st.Database = "unhealthy", "not initialized"
		response.Error[healthStatus](c, http.StatusServiceUnavailable, "service not ready", st)
		return
	}
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			st.Status, st.Database = "unhealthy", "disconnected"
			response.Error[healthStatus](c, http.StatusServiceUnavailable, "database unreachable", st)
			return
		}
	}
	response.Success(c, http.StatusOK, st, "ok", nil)
}

func (h *HealthHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"service": h.Service,
		"version": h.Version,
		"health":  "/health",
		"metrics": "/metrics",
	}, h.Service, nil)
}
