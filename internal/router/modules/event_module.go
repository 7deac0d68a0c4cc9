package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
)

// EventModule serves the event catalog and registrations.
// Public: listing, search, detail, participants. Everything else needs a
// bearer token resolved through the auth service.
type EventModule struct {
	Handler  *handlers.EventHandler
	Resolver middleware.IdentityResolver
	RDB      *redis.Client
}

func NewEventModule(h *handlers.EventHandler, resolver middleware.IdentityResolver, rdb *redis.Client) *EventModule {
	return &EventModule{Handler: h, Resolver: resolver, RDB: rdb}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	auth := middleware.RequireIdentity(m.Resolver)
	registerLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	events := rg.Group("/events")
	{
		events.GET("/", m.Handler.List)
		events.GET("/search", m.Handler.Search)
		events.GET("/:id", m.Handler.Get)
		events.GET("/:id/participants", m.Handler.Participants)

		events.POST("/", auth, m.Handler.Create)
		events.PUT("/:id", auth, m.Handler.Update)
		events.DELETE("/:id", auth, m.Handler.Delete)
		events.POST("/:id/register", registerLimiter, auth, m.Handler.Register)
		events.DELETE("/:id/unregister", auth, m.Handler.Unregister)
	}

	me := rg.Group("/users/me", auth)
	{
		me.GET("/events", m.Handler.MyEvents)
		me.GET("/registered-events", m.Handler.MyRegistrations)
	}
}
