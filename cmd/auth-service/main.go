package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/bootstrap"
	"github.com/oksasatya/go-event-platform/internal/container"
	pginfra "github.com/oksasatya/go-event-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-platform/internal/router"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

func main() {
	cfg, logger := bootstrap.Init(router.ServiceAuth)
	ctx := context.Background()

	seed := func(ctx context.Context, pool *pgxpool.Pool) error {
		if !cfg.SeedAdminEnabled {
			return nil
		}
		created, err := pginfra.SeedAdmin(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminUsername, cfg.SeedAdminName, cfg.SeedAdminPassword)
		if err != nil {
			return err
		}
		if created {
			logger.WithField("email", cfg.SeedAdminEmail).Info("admin user seeded")
		}
		return nil
	}
	pool := bootstrap.OpenDatabase(ctx, cfg, cfg.AuthDB, pginfra.SchemaAuth, logger, seed)
	defer pool.Close()

	if rdb := bootstrap.OptionalRedis(ctx, cfg, logger); rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// GCS backs avatar uploads; without a bucket the endpoint answers 503.
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs client init failed; avatar upload disabled")
		} else {
			defer func() { _ = gcsClient.Close() }()
			container.SetAvatars(&helpers.GCSUploader{Client: gcsClient, Bucket: cfg.GCSBucket})
		}
	}

	container.SetJWT(helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTIssuer, cfg.AccessTTL))
	if cfg.JWTAccessSecret == "devaccesssecret" && cfg.Env != "development" {
		logger.WithFields(logrus.Fields{"env": cfg.Env}).Warn("JWT_ACCESS_SECRET is the development default")
	}

	r := bootstrap.NewEngine(cfg)
	reg := router.NewRegistry(r)
	router.InitAuthModules(reg)
	reg.RegisterAll()

	bootstrap.Serve(cfg.AuthPort, r, logger)
}
