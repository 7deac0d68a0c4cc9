package postgres

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationsFS embed.FS

// Schema names one service's migration set under migrations/.
type Schema string

const (
	SchemaAuth          Schema = "auth"
	SchemaEvents        Schema = "events"
	SchemaNotifications Schema = "notifications"
)

// RunMigrations applies every pending migration of schema. Each schema keeps
// its own version table so the three sets can share one database.
func RunMigrations(dsn string, schema Schema, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{
		MigrationsTable: "schema_migrations_" + string(schema),
	})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationsFS, "migrations/"+string(schema))
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	logger.WithField("schema", schema).Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.WithField("schema", schema).Info("no migrations to run")
		return nil
	}
	return err
}
