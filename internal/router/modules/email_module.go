package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
)

type EmailModule struct {
	Handler *handlers.EmailHandler
	RDB     *redis.Client
}

func NewEmailModule(h *handlers.EmailHandler, rdb *redis.Client) *EmailModule {
	return &EmailModule{Handler: h, RDB: rdb}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	// every call hits the email provider
	limiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/email-test/", limiter, m.Handler.Test)
}
