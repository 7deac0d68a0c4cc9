package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
)

// SystemModule serves the root banner, health and Prometheus metrics.
type SystemModule struct {
	Health *handlers.HealthHandler
}

func NewSystemModule(h *handlers.HealthHandler) *SystemModule { return &SystemModule{Health: h} }

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Health.Root)
	rg.GET("/health", m.Health.Health)
	rg.GET("/metrics", gin.WrapH(metrics.Handler()))
}
