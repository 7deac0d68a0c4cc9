package router

import (
	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/internal/container"
	"github.com/oksasatya/go-event-platform/internal/infrastructure/identity"
	"github.com/oksasatya/go-event-platform/internal/infrastructure/notifier"
	pginfra "github.com/oksasatya/go-event-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-platform/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-event-platform/internal/interface/http"
	"github.com/oksasatya/go-event-platform/internal/router/modules"
)

const (
	ServiceAuth          = "auth-service"
	ServiceEvents        = "event-service"
	ServiceNotifications = "notification-service"
)

func addSystem(r *Registry, service string) {
	cfg := container.GetConfig()
	health := handlers.NewHealthHandler(service, cfg.Version, container.GetPGPool(), container.Ready())
	r.Add(modules.NewSystemModule(health))
}

// InitAuthModules wires the credential store and token issuer.
func InitAuthModules(r *Registry) *application.AuthService {
	logger := container.GetLogger()
	repo := pginfra.NewUserRepository(container.GetPGPool())

	var avatars application.AvatarStore
	if u := container.GetAvatars(); u != nil {
		avatars = u
	}
	svc := application.NewAuthService(repo, container.GetJWT(), avatars, logger)

	addSystem(r, ServiceAuth)
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc, logger), container.GetRedis()))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc, logger), svc, container.GetRedis()))
	return svc
}

// InitEventModules wires the event catalog. The returned notifier must be
// drained on shutdown.
func InitEventModules(r *Registry) *notifier.HTTPNotifier {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	var opts []identity.Option
	if rdb := container.GetRedis(); rdb != nil {
		opts = append(opts, identity.WithCache(rdb, cfg.AuthCacheTTL))
	}
	relay := identity.NewRelay(cfg.AuthServiceURL, cfg.AuthVerifyTimeout, logger, opts...)
	notes := notifier.NewHTTPNotifier(cfg.NotificationServiceURL, cfg.NotificationTimeout, logger)

	var index application.EventIndex
	if es := container.GetES(); es != nil {
		index = search.NewEventIndex(es, cfg.ESEventsIndex, logger)
	}
	svc := application.NewEventService(
		pginfra.NewEventRepository(pool),
		pginfra.NewRegistrationRepository(pool),
		notes,
		index,
		logger,
	)

	addSystem(r, ServiceEvents)
	r.Add(modules.NewEventModule(handlers.NewEventHandler(svc, logger), relay, container.GetRedis()))
	return notes
}

// InitNotificationModules wires notification dispatch. The returned
// service must be drained on shutdown so queued emails are not cut off.
func InitNotificationModules(r *Registry) *application.NotificationService {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	svc := application.NewNotificationService(
		pginfra.NewNotificationRepository(container.GetPGPool()),
		container.GetMailer(),
		cfg.EmailTypes(),
		cfg.EmailTimeout,
		cfg.AppName,
		logger,
	)

	addSystem(r, ServiceNotifications)
	r.Add(modules.NewNotificationModule(handlers.NewNotificationHandler(svc, logger)))
	r.Add(modules.NewEmailModule(handlers.NewEmailHandler(svc, logger), container.GetRedis()))
	return svc
}
