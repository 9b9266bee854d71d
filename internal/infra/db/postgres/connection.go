package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

const (
	connectAttempts     = 5
	connectInitialDelay = time.Second
)

// NewPgxPool connects to Postgres with bounded exponential backoff.
// The retry policy applies to connection establishment only; per-request
// store errors fail fast.
func NewPgxPool(ctx context.Context, url string, maxConns int32, log *zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.ConnConfig.ConnectTimeout = 30 * time.Second

	delay := connectInitialDelay
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		log.Info().Int("attempt", attempt).Int("attempts", connectAttempts).Msg("connecting to database")
		pool, err := pgxpool.ConnectConfig(ctx, cfg)
		if err == nil {
			log.Info().Msg("database connection established")
			return pool, nil
		}
		lastErr = err
		log.Error().Err(err).Int("attempt", attempt).Msg("database connection failed")
		if attempt == connectAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", connectAttempts, lastErr)
}
