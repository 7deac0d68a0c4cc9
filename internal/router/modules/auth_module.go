package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
)

// AuthModule exposes registration and token issuance.
// Public: POST /register, POST /token
type AuthModule struct {
	Handler *handlers.AuthHandler
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	tokenLimiter := middleware.RateLimit(m.RDB, 20, time.Minute, middleware.KeyByIPAndPath(), nil)    // 20 req/min per IP

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/token", tokenLimiter, m.Handler.Token)
}
