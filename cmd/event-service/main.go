package main

import (
	"context"

	"github.com/oksasatya/go-event-platform/internal/bootstrap"
	"github.com/oksasatya/go-event-platform/internal/container"
	pginfra "github.com/oksasatya/go-event-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-platform/internal/router"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

func main() {
	cfg, logger := bootstrap.Init(router.ServiceEvents)
	ctx := context.Background()

	pool := bootstrap.OpenDatabase(ctx, cfg, cfg.EventDB, pginfra.SchemaEvents, logger, nil)
	defer pool.Close()

	// Redis caches token resolutions (AUTH_CACHE_TTL) and backs rate limits.
	if rdb := bootstrap.OptionalRedis(ctx, cfg, logger); rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// Elasticsearch (optional): event search
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch init failed; search disabled")
		} else {
			container.SetES(es)
		}
	}

	r := bootstrap.NewEngine(cfg)
	reg := router.NewRegistry(r)
	notes := router.InitEventModules(reg)
	reg.RegisterAll()

	bootstrap.Serve(cfg.EventPort, r, logger, notes.Wait)
}
