package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/oksasatya/go-event-platform/pkg/helpers"
)

var (
	sharedOnce      sync.Once
	sharedInitErr   error
	sharedContainer *postgres.PostgresContainer
	sharedPool      *pgxpool.Pool
)

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	if sharedContainer != nil {
		_ = sharedContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

// setupPostgres starts one container for the package, applies all three
// migration sets and truncates every table. Without Docker the test is skipped.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}

	sharedOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("events"),
			postgres.WithUsername("events"),
			postgres.WithPassword("events"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedContainer = container

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedInitErr = err
			return
		}
		logger := helpers.NewNopLogger()
		for _, s := range []Schema{SchemaAuth, SchemaEvents, SchemaNotifications} {
			if err := RunMigrations(dsn, s, logger); err != nil {
				sharedInitErr = err
				return
			}
		}
		pool, err := NewPool(ctx, dsn, 10, 0, time.Hour)
		if err != nil {
			sharedInitErr = err
			return
		}
		sharedPool = pool
	})

	if sharedContainer == nil && sharedInitErr != nil {
		t.Skipf("postgres container unavailable: %v", sharedInitErr)
	}
	require.NoError(t, sharedInitErr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := sharedPool.Exec(ctx, `TRUNCATE users, registrations, events, notifications RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return sharedPool
}
