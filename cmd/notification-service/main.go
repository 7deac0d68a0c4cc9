package main

import (
	"context"

	"github.com/oksasatya/go-event-platform/internal/bootstrap"
	"github.com/oksasatya/go-event-platform/internal/container"
	pginfra "github.com/oksasatya/go-event-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-platform/internal/router"
	"github.com/oksasatya/go-event-platform/pkg/mailer"
)

func main() {
	cfg, logger := bootstrap.Init(router.ServiceNotifications)
	ctx := context.Background()

	pool := bootstrap.OpenDatabase(ctx, cfg, cfg.NotificationDB, pginfra.SchemaNotifications, logger, nil)
	defer pool.Close()

	if rdb := bootstrap.OptionalRedis(ctx, cfg, logger); rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	container.SetMailer(mailer.New(mailer.Config{
		Provider:      cfg.EmailProvider,
		From:          cfg.EmailFrom,
		Enabled:       cfg.MailSendEnabled,
		MailgunDomain: cfg.MailgunDomain,
		MailgunAPIKey: cfg.MailgunAPIKey,
		ResendAPIKey:  cfg.ResendAPIKey,
	}, logger))

	r := bootstrap.NewEngine(cfg)
	reg := router.NewRegistry(r)
	svc := router.InitNotificationModules(reg)
	reg.RegisterAll()

	bootstrap.Serve(cfg.NotificationPort, r, logger, svc.Wait)
}
