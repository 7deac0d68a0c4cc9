package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForDB pings up to attempts times, sleeping delay between tries.
func WaitForDB(ctx context.Context, db Pinger, attempts int, delay time.Duration, logger *logrus.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = db.Ping(pctx)
		cancel()
		if lastErr == nil {
			logger.Info("database ready")
			return nil
		}
		logger.WithError(lastErr).Warnf("attempt %d/%d: database not ready", i, attempts)
		if i == attempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", attempts, lastErr)
}
