// Package bootstrap holds the process setup shared by the service binaries:
// configuration, logging, the database readiness loop, optional clients,
// the gin engine and graceful shutdown.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/config"
	"github.com/oksasatya/go-event-platform/internal/container"
	pginfra "github.com/oksasatya/go-event-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
	"github.com/oksasatya/go-event-platform/pkg/validation"
)

const shutdownTimeout = 10 * time.Second

// Init loads .env and the configuration, builds the logger and publishes
// both through the container.
func Init(service string) (*config.Config, *logrus.Logger) {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(service, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()
	metrics.Init(service, cfg.Version)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	return cfg, logger
}

// AfterReady runs once the database answered and migrations are applied.
type AfterReady func(ctx context.Context, pool *pgxpool.Pool) error

// OpenDatabase builds the lazy pool and starts the readiness loop in the
// background. The service serves immediately; /health answers 503 until
// the loop, the migrations of schema and after have all succeeded. When
// the loop gives up the service keeps running and stays unhealthy.
func OpenDatabase(ctx context.Context, cfg *config.Config, db config.DBConfig, schema pginfra.Schema, logger *logrus.Logger, after AfterReady) *pgxpool.Pool {
	pool, err := pginfra.NewPool(ctx, db.DSN(), db.MaxConns, db.MinConns, db.MaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("invalid database configuration")
	}
	container.SetPGPool(pool)

	go func() {
		if err := pginfra.WaitForDB(ctx, pool, cfg.DBConnectAttempts, cfg.DBConnectDelay, logger); err != nil {
			logger.WithError(err).Error("database unavailable; service stays unhealthy")
			return
		}
		if err := pginfra.RunMigrations(db.DSN(), schema, logger); err != nil {
			logger.WithError(err).Error("migration failed; service stays unhealthy")
			return
		}
		if after != nil {
			if err := after(ctx, pool); err != nil {
				logger.WithError(err).Error("post-migration step failed")
			}
		}
		container.Ready().Store(true)
		metrics.DatabaseUp.Set(1)
	}()
	return pool
}

// OptionalRedis connects when REDIS_ADDR is set. An unreachable Redis is
// logged, not fatal: its users fall back or skip the cache.
func OptionalRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		helpers.LogWarn(logger, "redis not reachable at startup", err, logrus.Fields{"addr": cfg.RedisAddr})
	}
	container.SetRedis(rdb)
	return rdb
}

// NewEngine returns a gin engine with the shared middleware stack.
func NewEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	} else {
		c.AllowAllOrigins = true
	}
	return c
}

// Drain waits for background work started by a service.
type Drain func(ctx context.Context) error

// Serve listens on port until SIGINT or SIGTERM, then shuts the server down
// and runs drains within the shutdown timeout.
func Serve(port string, handler http.Handler, logger *logrus.Logger, drains ...Drain) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		helpers.LogInfo(logger, "server starting", logrus.Fields{"port": port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	for _, d := range drains {
		if err := d(ctx); err != nil {
			logger.WithError(err).Warn("background work not drained before timeout")
		}
	}
	logger.Info("server exited properly")
}
