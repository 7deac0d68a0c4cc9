package container

import (
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/config"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
	"github.com/oksasatya/go-event-platform/pkg/mailer"
)

// app-level container to share constructed components across packages.
// Each service binary fills in what it uses; the router wires modules
// from these singletons. Optional components stay nil when unconfigured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client
	avatars     *helpers.GCSUploader

	jwtManager *helpers.JWTManager
	sender     mailer.Sender

	// set once the database passed the readiness loop and migrations
	ready atomic.Bool
)

func SetConfig(c *config.Config)        { cfg = c }
func GetConfig() *config.Config         { return cfg }
func SetLogger(l *logrus.Logger)        { logger = l }
func GetLogger() *logrus.Logger         { return logger }
func SetPGPool(p *pgxpool.Pool)         { pgPool = p }
func GetPGPool() *pgxpool.Pool          { return pgPool }
func SetRedis(r *redis.Client)          { redisClient = r }
func GetRedis() *redis.Client           { return redisClient }
func SetES(c *elasticsearch.Client)     { esClient = c }
func GetES() *elasticsearch.Client      { return esClient }
func SetAvatars(u *helpers.GCSUploader) { avatars = u }
func GetAvatars() *helpers.GCSUploader  { return avatars }
func SetJWT(m *helpers.JWTManager)      { jwtManager = m }
func GetJWT() *helpers.JWTManager       { return jwtManager }
func SetMailer(s mailer.Sender)         { sender = s }
func GetMailer() mailer.Sender          { return sender }

// Ready reports database readiness to the health endpoint.
func Ready() *atomic.Bool { return &ready }
