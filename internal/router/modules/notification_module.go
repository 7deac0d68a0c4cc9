package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
)

// NotificationModule serves notification storage. The routes are
// unauthenticated; the service is meant to sit on the internal network
// next to the event service.
type NotificationModule struct {
	Handler *handlers.NotificationHandler
}

func NewNotificationModule(h *handlers.NotificationHandler) *NotificationModule {
	return &NotificationModule{Handler: h}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	{
		n.POST("/", m.Handler.Create)
		n.GET("/", m.Handler.List)
		n.GET("/:id", m.Handler.Get)
		n.PUT("/:id/read", m.Handler.MarkRead)
		n.DELETE("/:id", m.Handler.Delete)
	}
	rg.GET("/users/:id/unread-count", m.Handler.UnreadCount)
}
