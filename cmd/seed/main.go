// Command seed prepares service databases out of band: it applies
// migrations and creates the bootstrap admin user without starting a
// service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-event-platform/config"
	pginfra "github.com/oksasatya/go-event-platform/internal/infrastructure/postgres"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "seed",
		Short: "Migrate service databases and seed the admin user",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			cfg = config.Load()
		},
		SilenceUsage: true,
	}

	migrateCmd = &cobra.Command{
		Use:       "migrate [auth|events|notifications]...",
		Short:     "Apply pending migrations (all services when none is named)",
		ValidArgs: []string{"auth", "events", "notifications"},
		Args:      cobra.OnlyValidArgs,
		RunE:      runMigrate,
	}

	adminEmail, adminUsername, adminName, adminPassword string

	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Create the admin user in the auth database if it does not exist",
		RunE:  runAdmin,
	}
)

func init() {
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (default SEED_ADMIN_EMAIL)")
	adminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username (default SEED_ADMIN_USERNAME)")
	adminCmd.Flags().StringVar(&adminName, "name", "", "admin full name (default SEED_ADMIN_NAME)")
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (default SEED_ADMIN_PASSWORD)")

	rootCmd.AddCommand(migrateCmd, adminCmd)
}

func dbFor(schema pginfra.Schema) config.DBConfig {
	switch schema {
	case pginfra.SchemaEvents:
		return cfg.EventDB
	case pginfra.SchemaNotifications:
		return cfg.NotificationDB
	default:
		return cfg.AuthDB
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger := helpers.NewLogger("seed", cfg.Env)
	schemas := []pginfra.Schema{pginfra.SchemaAuth, pginfra.SchemaEvents, pginfra.SchemaNotifications}
	if len(args) > 0 {
		schemas = schemas[:0]
		for _, a := range args {
			schemas = append(schemas, pginfra.Schema(a))
		}
	}
	for _, s := range schemas {
		if err := pginfra.RunMigrations(dbFor(s).DSN(), s, logger); err != nil {
			return fmt.Errorf("migrate %s: %w", s, err)
		}
	}
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func runAdmin(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	db := cfg.AuthDB
	pool, err := pginfra.NewPool(ctx, db.DSN(), db.MaxConns, db.MinConns, db.MaxConnLife)
	if err != nil {
		return fmt.Errorf("open auth db: %w", err)
	}
	defer pool.Close()

	email := orDefault(adminEmail, cfg.SeedAdminEmail)
	created, err := pginfra.SeedAdmin(ctx, pool,
		email,
		orDefault(adminUsername, cfg.SeedAdminUsername),
		orDefault(adminName, cfg.SeedAdminName),
		orDefault(adminPassword, cfg.SeedAdminPassword),
	)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "seeded admin user %s\n", email)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "admin user %s already present\n", email)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
