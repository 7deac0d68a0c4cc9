package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
)

// UserModule serves the bearer-protected user routes of the auth service.
// The other services call GET /users/me to resolve tokens, so private
// addresses bypass the limiter.
type UserModule struct {
	Handler  *handlers.UserHandler
	Resolver middleware.IdentityResolver
	RDB      *redis.Client
}

func NewUserModule(h *handlers.UserHandler, resolver middleware.IdentityResolver, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Resolver: resolver, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RequireIdentity(m.Resolver),
	)
	{
		users.GET("/me", m.Handler.Me)
		users.PUT("/me", m.Handler.UpdateMe)
		users.PUT("/me/avatar", m.Handler.UploadAvatar)
		users.GET("/", m.Handler.List)
		users.GET("/:id", m.Handler.Get)
	}
}
